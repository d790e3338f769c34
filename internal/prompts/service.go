package prompts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/versecraft/versecraft/internal/cache"
	"github.com/versecraft/versecraft/internal/notify"
)

// DefaultTTL is how long an active prompt stays cached between reads.
const DefaultTTL = 10 * time.Minute

// Service exposes the prompt store operations: cached reads of the
// active template, optimistic-concurrency saves, and rollback.
type Service struct {
	repo  Repository
	cache *cache.Cache
	bus   notify.Publisher
	ttl   time.Duration
}

// NewService wires a repository to the cache and notification bus.
func NewService(repo Repository, c *cache.Cache, bus notify.Publisher, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{repo: repo, cache: c, bus: bus, ttl: ttl}
}

func cacheKey(u UseCase) string {
	return "prompts:active:" + string(u)
}

// Active returns the active template content for a use case, cached.
// Absence of a record yields "" with no error; the caller substitutes
// its built-in default.
func (s *Service) Active(ctx context.Context, useCase UseCase) (string, error) {
	return cache.GetOrSet(ctx, s.cache, cacheKey(useCase), s.ttl, func(ctx context.Context) (string, error) {
		rec, err := s.repo.FindActive(ctx, useCase)
		if err != nil {
			return "", err
		}
		if rec == nil {
			return "", nil
		}
		return rec.Content, nil
	})
}

// ActiveRecord returns the full active record, uncached. Used by the
// admin surface, which needs the version for optimistic saves.
func (s *Service) ActiveRecord(ctx context.Context, useCase UseCase) (*Record, error) {
	return s.repo.FindActive(ctx, useCase)
}

// Save writes a new version of a use case's prompt. When
// expectedVersion is non-nil and stale, the save fails with a
// ConflictError and the store is left unchanged. The first save of a
// use case creates version 1.
func (s *Service) Save(ctx context.Context, useCase UseCase, content, editor string, expectedVersion *int) (*Record, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("prompt content must not be empty")
	}

	rec, err := s.repo.CreateVersion(ctx, CreateParams{
		UseCase:         useCase,
		Content:         content,
		Editor:          editor,
		ExpectedVersion: expectedVersion,
		Action:          AuditUpdate,
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(useCase, rec)
	return rec, nil
}

// Rollback creates a new version whose content equals the snapshot at
// targetVersion. History is never mutated: the target version remains
// retrievable afterwards. A missing snapshot yields ErrNotFound.
func (s *Service) Rollback(ctx context.Context, useCase UseCase, targetVersion int, editor string) (*Record, error) {
	snap, err := s.repo.FindSnapshot(ctx, useCase, targetVersion)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("prompt %s version %d: %w", useCase, targetVersion, ErrNotFound)
	}

	rec, err := s.repo.CreateVersion(ctx, CreateParams{
		UseCase: useCase,
		Content: snap.Content,
		Editor:  editor,
		Action:  AuditRollback,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("use_case", string(useCase)).
		Int("target_version", targetVersion).
		Int("new_version", rec.Version).
		Msg("prompt rolled back")

	s.afterWrite(useCase, rec)
	return rec, nil
}

// History returns snapshots for a use case, newest first.
func (s *Service) History(ctx context.Context, useCase UseCase, limit int) ([]Snapshot, error) {
	return s.repo.ListSnapshots(ctx, useCase, limit)
}

// Audit returns the audit log for a use case, newest first.
func (s *Service) Audit(ctx context.Context, useCase UseCase, limit int) ([]AuditEntry, error) {
	return s.repo.ListAudit(ctx, useCase, limit)
}

func (s *Service) afterWrite(useCase UseCase, rec *Record) {
	s.cache.Invalidate(cacheKey(useCase))
	if s.bus != nil {
		s.bus.Publish(notify.TopicPromptsChanged, map[string]any{
			"use_case": string(useCase),
			"version":  rec.Version,
		})
	}
}
