package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versecraft/versecraft/internal/prompts"
	"github.com/versecraft/versecraft/internal/provider"
)

type stubSettings struct {
	values map[string]string
	err    error
}

func (s *stubSettings) All(ctx context.Context) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.values, nil
}

func newTestResolver(values map[string]string, env map[string]string) *Resolver {
	r := NewResolver(&stubSettings{values: values})
	r.getenv = func(key string) string { return env[key] }
	return r
}

func TestResolver_ForcedProviderWins(t *testing.T) {
	r := newTestResolver(map[string]string{
		"ai_provider":          "gemini",
		"ai_provider_generate": "groq",
		"groq_api_key":         "groq-key-abcdef",
		"gemini_api_key":       "gemini-key-abcdef",
	}, nil)

	cfg := r.Resolve(context.Background(), provider.ProviderGemini, prompts.UseCaseGenerate)
	assert.Equal(t, provider.ProviderGemini, cfg.Provider)
}

func TestResolver_PerUseCaseOverride(t *testing.T) {
	r := newTestResolver(map[string]string{
		"ai_provider":          "openai",
		"ai_provider_generate": "groq",
		"groq_api_key":         "groq-key-abcdef",
	}, nil)

	cfg := r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, provider.ProviderGroq, cfg.Provider)

	// The override only applies to request-facing use cases.
	cfg = r.Resolve(context.Background(), "", prompts.UseCaseExplain)
	assert.Equal(t, provider.ProviderOpenAI, cfg.Provider)
}

func TestResolver_GlobalDefaultThenOpenAI(t *testing.T) {
	r := newTestResolver(map[string]string{"ai_provider": "gemini"}, nil)
	cfg := r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, provider.ProviderGemini, cfg.Provider)

	r = newTestResolver(map[string]string{}, nil)
	cfg = r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, provider.ProviderOpenAI, cfg.Provider)
}

func TestResolver_ModelResolutionOrder(t *testing.T) {
	values := map[string]string{
		"ai_provider":       "openai",
		"openai_model":      "gpt-4o",
		"ai_model_generate": "gpt-4.1",
	}

	r := newTestResolver(values, nil)
	cfg := r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, "gpt-4.1", cfg.Model)

	delete(values, "ai_model_generate")
	cfg = r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, "gpt-4o", cfg.Model)

	delete(values, "openai_model")
	cfg = r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, defaultModels[provider.ProviderOpenAI], cfg.Model)
}

func TestResolver_TuningValues(t *testing.T) {
	r := newTestResolver(map[string]string{
		"ai_temperature": "1.2",
		"ai_max_tokens":  "512",
	}, nil)

	cfg := r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, 1.2, cfg.Temperature)
	assert.Equal(t, 512, cfg.MaxTokens)
}

func TestResolver_TemperatureClamped(t *testing.T) {
	r := newTestResolver(map[string]string{"ai_temperature": "9.0"}, nil)
	cfg := r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, maxTemperature, cfg.Temperature)

	r = newTestResolver(map[string]string{"ai_temperature": "not-a-number"}, nil)
	cfg = r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, defaultTemperature, cfg.Temperature)
}

func TestResolver_EnvFallbackWhenStoreUnreachable(t *testing.T) {
	r := NewResolver(&stubSettings{err: errors.New("connection refused")})
	r.getenv = func(key string) string {
		if key == "GEMINI_API_KEY" {
			return "gemini-env-key-123"
		}
		return ""
	}

	cfg := r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, provider.ProviderGemini, cfg.Provider)
	assert.True(t, cfg.Configured())
}

func TestResolver_EnvFallbackPrefersPriorityOrder(t *testing.T) {
	r := NewResolver(&stubSettings{err: errors.New("down")})
	r.getenv = func(key string) string {
		switch key {
		case "OPENAI_API_KEY":
			return "openai-env-key-123"
		case "GROQ_API_KEY":
			return "groq-env-key-123"
		}
		return ""
	}

	cfg := r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, provider.ProviderOpenAI, cfg.Provider)
}

func TestResolver_NoUsableKeyYieldsUnconfigured(t *testing.T) {
	r := NewResolver(&stubSettings{err: errors.New("down")})
	r.getenv = func(string) string { return "x" } // below minimal length

	cfg := r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.False(t, cfg.Configured())
}

func TestResolver_FallbackCandidates(t *testing.T) {
	r := newTestResolver(map[string]string{
		"openai_api_key": "openai-key-abcdef",
		"gemini_api_key": "gemini-key-abcdef",
		"groq_api_key":   "xx", // too short, skipped
	}, nil)

	candidates := r.FallbackCandidates(context.Background(), provider.ProviderOpenAI, prompts.UseCaseGenerate)
	require.Len(t, candidates, 1)
	assert.Equal(t, provider.ProviderGemini, candidates[0].Provider)
}

func TestResolver_FallbackCandidatesUseFallbackModel(t *testing.T) {
	r := newTestResolver(map[string]string{
		"gemini_api_key":        "gemini-key-abcdef",
		"gemini_model":          "gemini-1.5-pro",
		"gemini_fallback_model": "gemini-1.5-flash",
	}, nil)

	candidates := r.FallbackCandidates(context.Background(), provider.ProviderOpenAI, prompts.UseCaseGenerate)
	require.Len(t, candidates, 1)
	assert.Equal(t, "gemini-1.5-flash", candidates[0].Model)
}

func TestResolver_FallbackEnabled(t *testing.T) {
	r := newTestResolver(map[string]string{}, nil)
	assert.True(t, r.FallbackEnabled(context.Background()))

	r = newTestResolver(map[string]string{"ai_fallback_enabled": "false"}, nil)
	assert.False(t, r.FallbackEnabled(context.Background()))
}

func TestResolver_SetEnvLookupReplacesAmbientEnv(t *testing.T) {
	r := NewResolver(&stubSettings{err: errors.New("store down")})
	r.SetEnvLookup(func(key string) string {
		if key == "GEMINI_API_KEY" {
			return "gemini-key-abcdef"
		}
		return ""
	})

	cfg := r.Resolve(context.Background(), "", prompts.UseCaseGenerate)
	assert.Equal(t, provider.ProviderGemini, cfg.Provider)
	assert.True(t, cfg.Configured())
}
