package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/versecraft/versecraft/internal/prompts"
	"github.com/versecraft/versecraft/internal/provider"
)

// PromptSource serves the active template for a use case. An empty
// result means "use the built-in default".
type PromptSource interface {
	Active(ctx context.Context, useCase prompts.UseCase) (string, error)
}

// Service coordinates provider resolution, prompt composition,
// invocation, normalization, and the fallback chain. It owns no
// persistent state.
type Service struct {
	registry *provider.Registry
	resolver *Resolver
	prompts  PromptSource
	composer *Composer
	now      func() time.Time
}

// NewService wires the orchestrator.
func NewService(registry *provider.Registry, resolver *Resolver, promptSource PromptSource, composer *Composer) *Service {
	return &Service{
		registry: registry,
		resolver: resolver,
		prompts:  promptSource,
		composer: composer,
		now:      time.Now,
	}
}

// Generate produces the requested batch of content. Provider failures
// never surface to the caller: after the fallback chain is exhausted
// the deterministic static set is returned instead.
func (s *Service) Generate(ctx context.Context, p Params) ([]Item, error) {
	p.normalize()

	cfg := s.resolver.Resolve(ctx, p.Provider, prompts.UseCaseGenerate)
	template := s.template(ctx, prompts.UseCaseGenerate)

	// A keyless primary skips its own attempt but the remaining
	// providers still get their turn.
	if cfg.Configured() {
		items, err := s.generateWith(ctx, cfg, template, p)
		if err == nil {
			return items, nil
		}
		s.logAttemptFailure(cfg.Provider, err)
	} else {
		log.Warn().Str("provider", string(cfg.Provider)).Msg("primary provider has no usable key")
	}

	if s.resolver.FallbackEnabled(ctx) {
		for _, alt := range s.resolver.FallbackCandidates(ctx, cfg.Provider, prompts.UseCaseGenerate) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			items, err := s.generateWith(ctx, alt, template, p)
			if err == nil {
				log.Info().Str("provider", string(alt.Provider)).Msg("fallback provider succeeded")
				return items, nil
			}
			s.logAttemptFailure(alt.Provider, err)
		}
	}

	log.Warn().Msg("no provider produced content, serving static fallback")
	return staticBatch(p, s.now()), nil
}

// generateWith runs one provider attempt: compose, invoke, normalize.
// The prompt is rebuilt per attempt so each provider gets its own seed
// token.
func (s *Service) generateWith(ctx context.Context, cfg provider.Config, template string, p Params) ([]Item, error) {
	client, ok := s.registry.Client(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("no adapter registered for provider %s", cfg.Provider)
	}

	prompt := s.composer.Generate(ctx, template, p)

	raw, err := client.Invoke(ctx, cfg, prompt)
	if err != nil {
		return nil, err
	}

	items, err := normalizeBatch(raw, p, s.now())
	if err != nil {
		return nil, &ParseError{Provider: cfg.Provider, Err: err}
	}
	if len(items) == 0 {
		return nil, &ParseError{Provider: cfg.Provider, Err: fmt.Errorf("no usable items in response")}
	}

	if len(items) > p.Quantity {
		items = items[:p.Quantity]
	}
	return items, nil
}

// FindSource attributes a piece of content. Exhausting the chain
// yields the conservative {author: Unknown} rather than an error.
func (s *Service) FindSource(ctx context.Context, content string, forced provider.Provider) (*SourceResult, error) {
	run := func(ctx context.Context, cfg provider.Config, template string) (*SourceResult, error) {
		prompt := s.composer.FindSource(template, content)
		raw, err := s.invoke(ctx, cfg, prompt)
		if err != nil {
			return nil, err
		}
		res, err := normalizeSource(raw)
		if err != nil {
			return nil, &ParseError{Provider: cfg.Provider, Err: err}
		}
		return res, nil
	}

	res, err := runChain(ctx, s, prompts.UseCaseFindSource, forced, run)
	if err != nil {
		log.Warn().Err(err).Msg("source lookup failed on all providers")
		return &SourceResult{Author: "Unknown"}, nil
	}
	return res, nil
}

// Explain produces a reader-facing explanation of the content.
func (s *Service) Explain(ctx context.Context, content string, forced provider.Provider) (*Analysis, error) {
	return runChain(ctx, s, prompts.UseCaseExplain, forced, func(ctx context.Context, cfg provider.Config, template string) (*Analysis, error) {
		prompt := s.composer.Explain(template, content)
		return s.analysisAttempt(ctx, cfg, prompt)
	})
}

// Analyze produces a full literary analysis of the content.
func (s *Service) Analyze(ctx context.Context, content string, forced provider.Provider) (*Analysis, error) {
	return runChain(ctx, s, prompts.UseCaseAnalyze, forced, func(ctx context.Context, cfg provider.Config, template string) (*Analysis, error) {
		prompt := s.composer.Analyze(template, content)
		return s.analysisAttempt(ctx, cfg, prompt)
	})
}

func (s *Service) analysisAttempt(ctx context.Context, cfg provider.Config, prompt string) (*Analysis, error) {
	raw, err := s.invoke(ctx, cfg, prompt)
	if err != nil {
		return nil, err
	}
	a, err := normalizeAnalysis(raw)
	if err != nil {
		return nil, &ParseError{Provider: cfg.Provider, Err: err}
	}
	return a, nil
}

func (s *Service) invoke(ctx context.Context, cfg provider.Config, prompt string) (string, error) {
	client, ok := s.registry.Client(cfg.Provider)
	if !ok {
		return "", fmt.Errorf("no adapter registered for provider %s", cfg.Provider)
	}
	return client.Invoke(ctx, cfg, prompt)
}

// runChain executes one attempt against the resolved primary provider
// and then, when enabled, walks the remaining providers in priority
// order. Providers are tried sequentially, once each. A primary
// without a usable key contributes no attempt of its own but does not
// stop the chain.
func runChain[T any](ctx context.Context, s *Service, useCase prompts.UseCase, forced provider.Provider, attempt func(context.Context, provider.Config, string) (T, error)) (T, error) {
	var zero T

	cfg := s.resolver.Resolve(ctx, forced, useCase)
	template := s.template(ctx, useCase)

	var lastErr error
	if cfg.Configured() {
		result, err := attempt(ctx, cfg, template)
		if err == nil {
			return result, nil
		}
		s.logAttemptFailure(cfg.Provider, err)
		lastErr = err
	} else {
		log.Warn().Str("provider", string(cfg.Provider)).Str("use_case", string(useCase)).Msg("primary provider has no usable key")
	}

	if s.resolver.FallbackEnabled(ctx) {
		for _, alt := range s.resolver.FallbackCandidates(ctx, cfg.Provider, useCase) {
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}

			result, err := attempt(ctx, alt, template)
			if err == nil {
				log.Info().Str("provider", string(alt.Provider)).Msg("fallback provider succeeded")
				return result, nil
			}
			s.logAttemptFailure(alt.Provider, err)
			lastErr = err
		}
	}

	// No provider was even attemptable: no key anywhere.
	if lastErr == nil {
		return zero, provider.ErrNoAPIKey
	}
	return zero, fmt.Errorf("all providers failed: %w", lastErr)
}

// template fetches the active admin template; failures degrade to the
// built-in default rather than blocking the request.
func (s *Service) template(ctx context.Context, useCase prompts.UseCase) string {
	template, err := s.prompts.Active(ctx, useCase)
	if err != nil {
		log.Warn().Err(err).Str("use_case", string(useCase)).Msg("failed to load prompt template, using default")
		return ""
	}
	return template
}

// logAttemptFailure distinguishes parse failures (prompt/schema
// mismatch) from transport failures (outage) in the logs.
func (s *Service) logAttemptFailure(p provider.Provider, err error) {
	var pe *ParseError
	if errors.As(err, &pe) {
		log.Warn().Err(err).Str("provider", string(p)).Msg("provider response failed to parse")
		return
	}
	log.Warn().Err(err).Str("provider", string(p)).Msg("provider call failed")
}
