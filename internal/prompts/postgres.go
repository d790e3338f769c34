package prompts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository persists prompt history in Postgres. All mutations run
// in a single transaction so the compare-then-write, the snapshot, and
// the audit entry commit together.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a Postgres-backed repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) FindActive(ctx context.Context, useCase UseCase) (*Record, error) {
	rec := &Record{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, use_case, content, version, active, editor, created_at, updated_at
		FROM prompts WHERE use_case = $1 AND active = true
	`, useCase).Scan(&rec.ID, &rec.UseCase, &rec.Content, &rec.Version, &rec.Active,
		&rec.Editor, &rec.CreatedAt, &rec.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active prompt: %w", err)
	}
	return rec, nil
}

func (r *PgRepository) CreateVersion(ctx context.Context, p CreateParams) (*Record, error) {
	var rec *Record

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `
			SELECT version FROM prompts
			WHERE use_case = $1 AND active = true
			FOR UPDATE
		`, p.UseCase).Scan(&current)
		if err != nil && err != pgx.ErrNoRows {
			return fmt.Errorf("failed to read current version: %w", err)
		}

		if p.ExpectedVersion != nil && *p.ExpectedVersion != current {
			return &ConflictError{UseCase: p.UseCase, Expected: *p.ExpectedVersion, Current: current}
		}

		now := time.Now()
		if current > 0 {
			if _, err := tx.Exec(ctx, `
				UPDATE prompts SET active = false, updated_at = $2
				WHERE use_case = $1 AND active = true
			`, p.UseCase, now); err != nil {
				return fmt.Errorf("failed to retire active prompt: %w", err)
			}
		}

		rec = &Record{
			ID:        uuid.New(),
			UseCase:   p.UseCase,
			Content:   p.Content,
			Version:   current + 1,
			Active:    true,
			Editor:    p.Editor,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO prompts (id, use_case, content, version, active, editor, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, rec.ID, rec.UseCase, rec.Content, rec.Version, rec.Active, rec.Editor, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert prompt version: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO prompt_snapshots (id, prompt_id, use_case, version, content, editor, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New(), rec.ID, rec.UseCase, rec.Version, rec.Content, rec.Editor, now); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO prompt_audit (id, use_case, action, from_version, to_version, editor, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New(), rec.UseCase, p.Action, current, rec.Version, p.Editor, now); err != nil {
			return fmt.Errorf("failed to insert audit entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (r *PgRepository) FindSnapshot(ctx context.Context, useCase UseCase, version int) (*Snapshot, error) {
	snap := &Snapshot{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, prompt_id, use_case, version, content, editor, created_at
		FROM prompt_snapshots WHERE use_case = $1 AND version = $2
	`, useCase, version).Scan(&snap.ID, &snap.PromptID, &snap.UseCase, &snap.Version,
		&snap.Content, &snap.Editor, &snap.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot: %w", err)
	}
	return snap, nil
}

func (r *PgRepository) ListSnapshots(ctx context.Context, useCase UseCase, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, prompt_id, use_case, version, content, editor, created_at
		FROM prompt_snapshots
		WHERE use_case = $1
		ORDER BY version DESC
		LIMIT $2
	`, useCase, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := make([]Snapshot, 0)
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.PromptID, &s.UseCase, &s.Version, &s.Content,
			&s.Editor, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

func (r *PgRepository) ListAudit(ctx context.Context, useCase UseCase, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, use_case, action, from_version, to_version, editor, created_at
		FROM prompt_audit
		WHERE use_case = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, useCase, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.UseCase, &e.Action, &e.FromVersion, &e.ToVersion,
			&e.Editor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
