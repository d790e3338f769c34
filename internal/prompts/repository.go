package prompts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CreateParams describes one version write. ExpectedVersion, when
// non-nil, must match the current active version or the write fails
// with a ConflictError.
type CreateParams struct {
	UseCase         UseCase
	Content         string
	Editor          string
	ExpectedVersion *int
	Action          AuditAction
}

// Repository is the persistence boundary for prompt versions. Each
// CreateVersion call performs the compare-then-write, the snapshot
// append, and the audit append within a single transaction.
type Repository interface {
	// FindActive returns the active record for a use case, or nil when
	// none exists.
	FindActive(ctx context.Context, useCase UseCase) (*Record, error)
	// CreateVersion writes the next version and repoints the active
	// record.
	CreateVersion(ctx context.Context, p CreateParams) (*Record, error)
	// FindSnapshot returns the snapshot at a specific version, or nil.
	FindSnapshot(ctx context.Context, useCase UseCase, version int) (*Snapshot, error)
	// ListSnapshots returns snapshots newest-first.
	ListSnapshots(ctx context.Context, useCase UseCase, limit int) ([]Snapshot, error)
	// ListAudit returns audit entries newest-first.
	ListAudit(ctx context.Context, useCase UseCase, limit int) ([]AuditEntry, error)
}

// MemoryRepository keeps prompt history in memory. Used by tests and
// database-less runs.
type MemoryRepository struct {
	mu        sync.Mutex
	records   map[UseCase][]*Record
	snapshots map[UseCase][]Snapshot
	audit     map[UseCase][]AuditEntry
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records:   make(map[UseCase][]*Record),
		snapshots: make(map[UseCase][]Snapshot),
		audit:     make(map[UseCase][]AuditEntry),
	}
}

func (r *MemoryRepository) FindActive(ctx context.Context, useCase UseCase) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records[useCase] {
		if rec.Active {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) CreateVersion(ctx context.Context, p CreateParams) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := 0
	var active *Record
	for _, rec := range r.records[p.UseCase] {
		if rec.Active {
			active = rec
			current = rec.Version
		}
	}

	if p.ExpectedVersion != nil && *p.ExpectedVersion != current {
		return nil, &ConflictError{UseCase: p.UseCase, Expected: *p.ExpectedVersion, Current: current}
	}

	now := time.Now()
	rec := &Record{
		ID:        uuid.New(),
		UseCase:   p.UseCase,
		Content:   p.Content,
		Version:   current + 1,
		Active:    true,
		Editor:    p.Editor,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if active != nil {
		active.Active = false
		active.UpdatedAt = now
	}
	r.records[p.UseCase] = append(r.records[p.UseCase], rec)

	r.snapshots[p.UseCase] = append(r.snapshots[p.UseCase], Snapshot{
		ID:        uuid.New(),
		PromptID:  rec.ID,
		UseCase:   p.UseCase,
		Version:   rec.Version,
		Content:   rec.Content,
		Editor:    p.Editor,
		CreatedAt: now,
	})

	r.audit[p.UseCase] = append(r.audit[p.UseCase], AuditEntry{
		ID:          uuid.New(),
		UseCase:     p.UseCase,
		Action:      p.Action,
		FromVersion: current,
		ToVersion:   rec.Version,
		Editor:      p.Editor,
		CreatedAt:   now,
	})

	cp := *rec
	return &cp, nil
}

func (r *MemoryRepository) FindSnapshot(ctx context.Context, useCase UseCase, version int) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.snapshots[useCase] {
		if s.Version == version {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) ListSnapshots(ctx context.Context, useCase UseCase, limit int) ([]Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Snapshot, len(r.snapshots[useCase]))
	copy(out, r.snapshots[useCase])
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) ListAudit(ctx context.Context, useCase UseCase, limit int) ([]AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]AuditEntry, len(r.audit[useCase]))
	copy(out, r.audit[useCase])
	sort.Slice(out, func(i, j int) bool { return out[i].ToVersion > out[j].ToVersion })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
