package generation

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/versecraft/versecraft/internal/prompts"
	"github.com/versecraft/versecraft/internal/provider"
)

// Settings keys the resolver reads.
const (
	keyDefaultProvider = "ai_provider"
	keyTemperature     = "ai_temperature"
	keyMaxTokens       = "ai_max_tokens"
	keyFallbackEnabled = "ai_fallback_enabled"
)

var defaultModels = map[provider.Provider]string{
	provider.ProviderOpenAI: "gpt-4o-mini",
	provider.ProviderGemini: "gemini-1.5-flash",
	provider.ProviderGroq:   "llama-3.1-70b-versatile",
}

const (
	defaultTemperature = 0.8
	defaultMaxTokens   = 2048
	maxTemperature     = 1.5
)

// SettingsSource is the read side of the configuration store.
type SettingsSource interface {
	All(ctx context.Context) (map[string]string, error)
}

// Resolver computes the effective provider configuration for a
// request from the settings store, falling back to environment keys
// when the store is unreachable.
type Resolver struct {
	settings SettingsSource
	getenv   func(string) string
}

// NewResolver creates a resolver over the given settings source.
func NewResolver(settings SettingsSource) *Resolver {
	return &Resolver{settings: settings, getenv: os.Getenv}
}

// SetEnvLookup replaces the ambient environment with an explicit key
// lookup, typically the keys captured by config.Load at startup.
func (r *Resolver) SetEnvLookup(fn func(string) string) {
	if fn != nil {
		r.getenv = fn
	}
}

// Resolve returns the effective configuration: forced provider, else
// the per-use-case override, else the global default, else openai.
// When settings are entirely unavailable the environment decides. The
// result may be unconfigured (empty key); callers must short-circuit
// to static fallback content instead of attempting a network call.
func (r *Resolver) Resolve(ctx context.Context, forced provider.Provider, useCase prompts.UseCase) provider.Config {
	values, err := r.settings.All(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("settings unavailable, resolving provider from environment")
		return r.resolveFromEnv(forced)
	}

	p := forced
	if p == "" {
		if override, ok := provider.Parse(values["ai_provider_"+string(useCase)]); ok && overridableUseCase(useCase) {
			p = override
		}
	}
	if p == "" {
		if global, ok := provider.Parse(values[keyDefaultProvider]); ok {
			p = global
		}
	}
	if p == "" {
		p = provider.ProviderOpenAI
	}

	cfg := provider.Config{
		Provider:      p,
		APIKey:        r.apiKey(values, p),
		Model:         r.model(values, p, useCase),
		FallbackModel: values[string(p)+"_fallback_model"],
		Temperature:   parseTemperature(values[keyTemperature]),
		MaxTokens:     parseMaxTokens(values[keyMaxTokens]),
	}
	return cfg
}

// FallbackEnabled reports whether the fallback chain may be walked.
// Defaults to enabled when unset or unreadable.
func (r *Resolver) FallbackEnabled(ctx context.Context) bool {
	values, err := r.settings.All(ctx)
	if err != nil {
		return true
	}
	return values[keyFallbackEnabled] != "false"
}

// FallbackCandidates returns configurations for the remaining
// providers in priority order, skipping the excluded provider and any
// whose key is absent or too short. When a provider has a fallback
// model configured, retries use it.
func (r *Resolver) FallbackCandidates(ctx context.Context, exclude provider.Provider, useCase prompts.UseCase) []provider.Config {
	values, err := r.settings.All(ctx)

	candidates := make([]provider.Config, 0, len(provider.Priority))
	for _, p := range provider.Priority {
		if p == exclude {
			continue
		}

		var cfg provider.Config
		if err != nil {
			cfg = r.envConfig(p)
		} else {
			cfg = provider.Config{
				Provider:    p,
				APIKey:      r.apiKey(values, p),
				Model:       r.model(values, p, useCase),
				Temperature: parseTemperature(values[keyTemperature]),
				MaxTokens:   parseMaxTokens(values[keyMaxTokens]),
			}
			if fb := values[string(p)+"_fallback_model"]; fb != "" {
				cfg.Model = fb
			}
		}

		if cfg.Configured() {
			candidates = append(candidates, cfg)
		}
	}
	return candidates
}

// apiKey prefers the stored key, then the environment.
func (r *Resolver) apiKey(values map[string]string, p provider.Provider) string {
	if key := strings.TrimSpace(values[string(p)+"_api_key"]); key != "" {
		return key
	}
	return strings.TrimSpace(r.getenv(envKeyVar(p)))
}

// model resolves per-use-case override, then the provider's configured
// model, then the hardcoded default.
func (r *Resolver) model(values map[string]string, p provider.Provider, useCase prompts.UseCase) string {
	if m := values["ai_model_"+string(useCase)]; m != "" {
		return m
	}
	if m := values[string(p)+"_model"]; m != "" {
		return m
	}
	return defaultModels[p]
}

// resolveFromEnv picks the first provider in priority order whose
// environment key looks minimally valid, honoring a forced provider
// first. With no usable key it returns an unconfigured openai config.
func (r *Resolver) resolveFromEnv(forced provider.Provider) provider.Config {
	if forced != "" {
		return r.envConfig(forced)
	}
	for _, p := range provider.Priority {
		cfg := r.envConfig(p)
		if cfg.Configured() {
			return cfg
		}
	}
	return r.envConfig(provider.ProviderOpenAI)
}

func (r *Resolver) envConfig(p provider.Provider) provider.Config {
	return provider.Config{
		Provider:    p,
		APIKey:      strings.TrimSpace(r.getenv(envKeyVar(p))),
		Model:       defaultModels[p],
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
}

// overridableUseCase limits per-use-case provider overrides to the
// two request-facing tasks.
func overridableUseCase(u prompts.UseCase) bool {
	return u == prompts.UseCaseGenerate || u == prompts.UseCaseFindSource
}

func envKeyVar(p provider.Provider) string {
	return strings.ToUpper(string(p)) + "_API_KEY"
}

func parseTemperature(s string) float64 {
	if s == "" {
		return defaultTemperature
	}
	t, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultTemperature
	}
	if t < 0 {
		return 0
	}
	if t > maxTemperature {
		return maxTemperature
	}
	return t
}

func parseMaxTokens(s string) int {
	if s == "" {
		return defaultMaxTokens
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return defaultMaxTokens
	}
	return n
}
