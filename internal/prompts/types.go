// Package prompts manages versioned prompt templates with an active
// pointer per use case, an append-only snapshot history, and an audit
// log of edits.
package prompts

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UseCase identifies a generation or analysis task with its own
// template.
type UseCase string

const (
	UseCaseGenerate   UseCase = "generate"
	UseCaseFindSource UseCase = "find_source"
	UseCaseExplain    UseCase = "explain"
	UseCaseAnalyze    UseCase = "analyze"
)

// UseCases lists all valid use cases.
var UseCases = []UseCase{UseCaseGenerate, UseCaseFindSource, UseCaseExplain, UseCaseAnalyze}

// ParseUseCase validates a use-case string.
func ParseUseCase(s string) (UseCase, error) {
	for _, u := range UseCases {
		if string(u) == s {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown use case %q", s)
}

// Record is a prompt template version. At most one record per use case
// is active at any time; content is never mutated in place.
type Record struct {
	ID        uuid.UUID `json:"id"`
	UseCase   UseCase   `json:"use_case"`
	Content   string    `json:"content"`
	Version   int       `json:"version"`
	Active    bool      `json:"active"`
	Editor    string    `json:"editor"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is an immutable copy of a record at write time. Snapshots
// are append-only and never deleted.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	PromptID  uuid.UUID `json:"prompt_id"`
	UseCase   UseCase   `json:"use_case"`
	Version   int       `json:"version"`
	Content   string    `json:"content"`
	Editor    string    `json:"editor"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditAction is the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditUpdate   AuditAction = "update"
	AuditRollback AuditAction = "rollback"
)

// AuditEntry records one mutation of a use case's prompt.
type AuditEntry struct {
	ID          uuid.UUID   `json:"id"`
	UseCase     UseCase     `json:"use_case"`
	Action      AuditAction `json:"action"`
	FromVersion int         `json:"from_version"`
	ToVersion   int         `json:"to_version"`
	Editor      string      `json:"editor"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ErrNotFound is returned when a requested version has no snapshot.
var ErrNotFound = errors.New("prompt version not found")

// ConflictError is returned when a save carries a stale expected
// version. The caller must re-fetch and resubmit.
type ConflictError struct {
	UseCase  UseCase
	Expected int
	Current  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("prompt %s: expected version %d but current is %d", e.UseCase, e.Expected, e.Current)
}

// IsConflict reports whether err is a version conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
