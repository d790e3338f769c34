package generation

import "time"

// Static fallback content returned when no provider is configured or
// every provider in the chain failed. The surrounding UI always has
// something to render.
var staticContent = map[ContentType][]string{
	ContentQuote: {
		"The smallest daily attention outlasts the grandest intention.",
		"What you return to, returns to you.",
		"A question held gently teaches more than an answer gripped tightly.",
		"Begin where you are; the path appears under moving feet.",
		"Stillness is not the absence of motion but the presence of attention.",
	},
	ContentPoem: {
		"Morning lifts the window's gray,\nand the kettle hums its single note.\nNothing asked of me just yet\nbut to stand here, warm cup, bare feet.",
		"The river does not argue\nwith the stone it cannot move.\nIt remembers the sea\nand keeps leaving.",
		"One lamp left on in the house across the street.\nSomeone is awake with their one life,\nturning it over like a coin\nthey are not ready to spend.",
	},
	ContentReflection: {
		"I noticed today how much of my worry is rehearsal for scenes that never open. Perhaps attention, not certainty, is what I actually owe the day.",
		"The things I keep postponing are small. It is the postponing itself that has grown large. I want to trade one grand intention for one finished hour.",
		"I spent a minute watching the light move across the floor and could not name what it was for. Maybe that is what rest is: usefulness suspended.",
	},
}

// staticBatch builds the deterministic fallback set: one item per
// requested quantity, cycling the fixed list, authored per the
// writing-mode rule.
func staticBatch(p Params, now time.Time) []Item {
	pool := staticContent[p.ContentType]
	if len(pool) == 0 {
		pool = staticContent[ContentQuote]
	}

	items := make([]Item, 0, p.Quantity)
	for i := 0; i < p.Quantity; i++ {
		items = append(items, Item{
			Content:     pool[i%len(pool)],
			Author:      authorFor(p.Category, i, now, p.WritingMode),
			Category:    p.Category,
			ContentType: p.ContentType,
		})
	}
	return items
}
