package generation

import (
	"strings"
	"time"
)

// Author pools for the known-writers mode, keyed by category. The pick
// is deterministic within a second and varied across calls; it is not
// meant to be random.
var authorPools = map[string][]string{
	"love": {
		"Pablo Neruda", "Elizabeth Barrett Browning", "Rumi", "Khalil Gibran", "John Keats",
	},
	"life": {
		"Maya Angelou", "Ralph Waldo Emerson", "Rainer Maria Rilke", "Mary Oliver", "Henry David Thoreau",
	},
	"nature": {
		"Mary Oliver", "Walt Whitman", "Robert Frost", "Wendell Berry", "Basho",
	},
	"wisdom": {
		"Marcus Aurelius", "Seneca", "Lao Tzu", "Rabindranath Tagore", "Michel de Montaigne",
	},
	"motivation": {
		"Langston Hughes", "Maya Angelou", "Theodore Roosevelt", "Helen Keller",
	},
	"friendship": {
		"C.S. Lewis", "Ralph Waldo Emerson", "Jane Austen", "Epicurus",
	},
	"grief": {
		"Emily Dickinson", "Rainer Maria Rilke", "W.H. Auden", "Christina Rossetti",
	},
}

var defaultAuthorPool = []string{
	"Emily Dickinson", "Walt Whitman", "Rumi", "Maya Angelou", "Rainer Maria Rilke",
	"Mary Oliver", "Khalil Gibran", "Ralph Waldo Emerson",
}

func poolFor(category string) []string {
	if pool, ok := authorPools[strings.ToLower(category)]; ok {
		return pool
	}
	return defaultAuthorPool
}

// authorFor applies the authorship rule: originalAI content is always
// "Anonymous"; knownWriters content is attributed from the category
// pool, indexed by item position plus the current unix second.
func authorFor(category string, index int, now time.Time, mode WritingMode) string {
	if mode == WritingModeOriginalAI {
		return "Anonymous"
	}

	pool := poolFor(category)
	return pool[(index+int(now.Unix()))%len(pool)]
}
