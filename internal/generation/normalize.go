package generation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// minContentLength is the trimmed length below which an item is
// discarded as noise.
const minContentLength = 10

// extractJSON returns the first balanced JSON object or array
// substring of raw. An object start is preferred when it occurs
// before an array start.
func extractJSON(raw string) (string, error) {
	objIdx := strings.IndexByte(raw, '{')
	arrIdx := strings.IndexByte(raw, '[')

	start := arrIdx
	open, close := byte('['), byte(']')
	if objIdx >= 0 && (arrIdx < 0 || objIdx < arrIdx) {
		start = objIdx
		open, close = '{', '}'
	}
	if start < 0 {
		return "", fmt.Errorf("no JSON payload found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON payload in response")
}

type rawItem struct {
	Content string `json:"content"`
	Text    string `json:"text"`
	Author  string `json:"author"`
	Source  string `json:"source"`
}

func (r rawItem) text() string {
	if r.Content != "" {
		return r.Content
	}
	return r.Text
}

// parseItems decodes either {"items": [...]} or a bare array.
func parseItems(payload string) ([]rawItem, error) {
	var wrapped struct {
		Items []rawItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items, nil
	}

	var items []rawItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("payload is neither an items object nor an array: %w", err)
	}
	return items, nil
}

// dedupKey collapses whitespace and case so near-identical items
// compare equal.
func dedupKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// normalizeBatch converts a raw provider response into deduplicated,
// attributed items. Exact duplicates (case-insensitive,
// whitespace-collapsed) and short fragments are dropped.
func normalizeBatch(raw string, p Params, now time.Time) ([]Item, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	rawItems, err := parseItems(payload)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rawItems))
	items := make([]Item, 0, len(rawItems))
	for _, ri := range rawItems {
		content := strings.TrimSpace(ri.text())
		if len(content) <= minContentLength {
			continue
		}

		key := dedupKey(content)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		items = append(items, Item{
			Content:     content,
			Author:      authorFor(p.Category, len(items), now, p.WritingMode),
			Category:    p.Category,
			ContentType: p.ContentType,
		})
	}

	return items, nil
}

// hedgePhrases mark attributions the model itself is unsure about.
var hedgePhrases = []string{
	"unknown",
	"uncertain",
	"apocryphal",
	"often attributed",
	"misattributed",
}

const lowConfidenceThreshold = 0.4

type rawSource struct {
	Author     string          `json:"author"`
	Source     string          `json:"source"`
	Confidence json.RawMessage `json:"confidence"`
}

// normalizeSource applies the conservative-attribution policy: low
// confidence or a hedged author forces "Unknown" regardless of what
// the model returned.
func normalizeSource(raw string) (*SourceResult, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var src rawSource
	if err := json.Unmarshal([]byte(payload), &src); err != nil {
		return nil, fmt.Errorf("payload is not a source object: %w", err)
	}

	confidence := confidenceLabel(src.Confidence)
	author := strings.TrimSpace(src.Author)

	if author == "" || confidence == "low" || hedged(author) {
		return &SourceResult{Author: "Unknown"}, nil
	}

	return &SourceResult{
		Author:     author,
		Source:     strings.TrimSpace(src.Source),
		Confidence: confidence,
	}, nil
}

// confidenceLabel accepts either a string label or a numeric score.
func confidenceLabel(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "low"
	}

	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		return strings.ToLower(strings.TrimSpace(label))
	}

	var score float64
	if err := json.Unmarshal(raw, &score); err == nil {
		switch {
		case score < lowConfidenceThreshold:
			return "low"
		case score < 0.75:
			return "medium"
		default:
			return "high"
		}
	}

	return "low"
}

func hedged(author string) bool {
	lower := strings.ToLower(author)
	for _, phrase := range hedgePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// normalizeAnalysis decodes the literary-analysis object.
func normalizeAnalysis(raw string) (*Analysis, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var a Analysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, fmt.Errorf("payload is not an analysis object: %w", err)
	}
	return &a, nil
}
