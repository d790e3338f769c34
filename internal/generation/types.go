// Package generation is the orchestration core: it resolves the
// effective provider configuration for a request, composes the prompt,
// invokes the provider adapter, normalizes the response, and walks the
// fallback chain when a provider fails.
package generation

import (
	"fmt"

	"github.com/versecraft/versecraft/internal/provider"
)

// ContentType is the kind of content being generated.
type ContentType string

const (
	ContentQuote      ContentType = "quote"
	ContentPoem       ContentType = "poem"
	ContentReflection ContentType = "reflection"
)

// WritingMode controls attribution of generated items.
type WritingMode string

const (
	// WritingModeKnownWriters emulates real authors stylistically and
	// attributes items to a per-category pool of real names.
	WritingModeKnownWriters WritingMode = "knownWriters"
	// WritingModeOriginalAI produces original content attributed to
	// "Anonymous".
	WritingModeOriginalAI WritingMode = "originalAI"
)

// Params are the caller-supplied generation parameters. They are
// transient and never persisted by this package.
type Params struct {
	Category    string            `json:"category"`
	ContentType ContentType       `json:"content_type"`
	Theme       string            `json:"theme,omitempty"`
	Tone        string            `json:"tone,omitempty"`
	Quantity    int               `json:"quantity"`
	WritingMode WritingMode       `json:"writing_mode"`
	Provider    provider.Provider `json:"provider,omitempty"` // optional forced provider
}

// normalize fills defaults and clamps out-of-range values in place.
func (p *Params) normalize() {
	if p.Quantity <= 0 {
		p.Quantity = 1
	}
	if p.Quantity > 20 {
		p.Quantity = 20
	}
	switch p.ContentType {
	case ContentQuote, ContentPoem, ContentReflection:
	default:
		p.ContentType = ContentQuote
	}
	switch p.WritingMode {
	case WritingModeKnownWriters, WritingModeOriginalAI:
	default:
		p.WritingMode = WritingModeOriginalAI
	}
}

// Item is one normalized piece of generated content.
type Item struct {
	Content     string      `json:"content"`
	Author      string      `json:"author"`
	Source      string      `json:"source,omitempty"`
	Category    string      `json:"category"`
	ContentType ContentType `json:"content_type"`
}

// SourceResult is the outcome of a source lookup. Author is "Unknown"
// whenever the model's attribution cannot be trusted.
type SourceResult struct {
	Author     string `json:"author"`
	Source     string `json:"source,omitempty"`
	Confidence string `json:"confidence,omitempty"`
}

// Analysis is the literary-analysis payload for the explain and
// analyze use cases.
type Analysis struct {
	Themes          []string `json:"themes,omitempty"`
	LiteraryDevices []string `json:"literary_devices,omitempty"`
	Metaphors       []string `json:"metaphors,omitempty"`
	Tone            string   `json:"tone,omitempty"`
	Style           string   `json:"style,omitempty"`
	Imagery         []string `json:"imagery,omitempty"`
	Summary         string   `json:"summary,omitempty"`
}

// ParseError marks a response that was not valid or expected JSON. For
// fallback purposes it behaves like a transport failure, but it is
// logged distinctly because it indicates a prompt/schema mismatch
// rather than an outage.
type ParseError struct {
	Provider provider.Provider
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s response could not be parsed: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
