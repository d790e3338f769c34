// Package provider normalizes three external AI services behind one
// invoke contract. Adapters return the raw text response untouched;
// parsing belongs to the generation layer so a malformed-JSON failure
// is diagnosable independent of transport.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider identifies an external AI service.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
)

// Priority is the fixed order providers are tried in during fallback.
var Priority = []Provider{ProviderOpenAI, ProviderGemini, ProviderGroq}

// Parse validates a provider string.
func Parse(s string) (Provider, bool) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderOpenAI:
		return ProviderOpenAI, true
	case ProviderGemini:
		return ProviderGemini, true
	case ProviderGroq:
		return ProviderGroq, true
	}
	return "", false
}

// MinKeyLength is the minimal length for an API key to count as
// configured. Shorter values are treated as absent.
const MinKeyLength = 8

// Config is the per-request resolved provider configuration. It is
// assembled from the settings store (or environment) per call and
// never persisted here.
type Config struct {
	Provider      Provider
	APIKey        string
	Model         string
	FallbackModel string
	MaxTokens     int
	Temperature   float64
}

// Configured reports whether the key looks minimally valid. Callers
// must treat an unconfigured Config as "do not attempt a network call".
func (c Config) Configured() bool {
	return len(strings.TrimSpace(c.APIKey)) >= MinKeyLength
}

// ErrNoAPIKey is returned before any network call when the key is
// missing or too short.
var ErrNoAPIKey = errors.New("provider API key missing or invalid")

// ErrEmptyResponse is returned when the provider answered with no text.
var ErrEmptyResponse = errors.New("provider returned an empty response")

// TransportError wraps a network failure or non-2xx provider status.
type TransportError struct {
	Provider Provider
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s returned status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// systemPreamble constrains every provider to machine-readable output.
const systemPreamble = "You are a content generation engine. Respond with valid JSON only. " +
	"Do not wrap the JSON in markdown code fences and do not add commentary."

// Client is the adapter contract. Invoke sends the prompt as the sole
// user turn with the fixed JSON-only system preamble and returns the
// raw text response. Adapters never retry; the fallback chain lives in
// the generation layer.
type Client interface {
	Name() Provider
	Invoke(ctx context.Context, cfg Config, prompt string) (string, error)
}

// Registry maps providers to their adapters.
type Registry struct {
	clients map[Provider]Client
}

// NewRegistry creates a registry with the three production adapters.
func NewRegistry() *Registry {
	r := &Registry{clients: make(map[Provider]Client)}
	r.Register(NewOpenAIClient(""))
	r.Register(NewGeminiClient(""))
	r.Register(NewGroqClient(""))
	return r
}

// Register adds or replaces an adapter.
func (r *Registry) Register(c Client) {
	r.clients[c.Name()] = c
}

// Client returns the adapter for a provider.
func (r *Registry) Client(p Provider) (Client, bool) {
	c, ok := r.clients[p]
	return c, ok
}
