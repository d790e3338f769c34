// Package db wraps the Postgres connection pool.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DB wraps the database connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("host", config.ConnConfig.Host).Msg("connected to database")

	return &DB{pool: pool}, nil
}

// Close closes the database connection.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// HealthCheck verifies database connectivity.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Migrate applies the schema for the settings and prompt stores.
// Statements are idempotent so startup can run them unconditionally.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS prompts (
			id UUID PRIMARY KEY,
			use_case TEXT NOT NULL,
			content TEXT NOT NULL,
			version INT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT false,
			editor TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (use_case, version)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS prompts_active_idx
			ON prompts (use_case) WHERE active`,
		`CREATE TABLE IF NOT EXISTS prompt_snapshots (
			id UUID PRIMARY KEY,
			prompt_id UUID NOT NULL REFERENCES prompts (id),
			use_case TEXT NOT NULL,
			version INT NOT NULL,
			content TEXT NOT NULL,
			editor TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (use_case, version)
		)`,
		`CREATE TABLE IF NOT EXISTS prompt_audit (
			id UUID PRIMARY KEY,
			use_case TEXT NOT NULL,
			action TEXT NOT NULL,
			from_version INT NOT NULL,
			to_version INT NOT NULL,
			editor TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Debug().Msg("database schema ready")
	return nil
}
