// Package settings provides the key/value configuration store that
// holds provider selection, API keys, models, and tuning values.
package settings

import (
	"context"
	"sync"
)

// Store is the persistence boundary for settings. Implementations must
// treat missing keys as absent rather than as errors.
type Store interface {
	// All returns every key/value pair.
	All(ctx context.Context) (map[string]string, error)
	// Set writes a single key.
	Set(ctx context.Context, key, value string) error
	// SetAll writes several keys atomically.
	SetAll(ctx context.Context, values map[string]string) error
}

// MemoryStore is an in-memory Store for tests and database-less runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string

	// Err, when set, is returned by All to simulate an unreachable store.
	Err error
}

// NewMemoryStore creates a MemoryStore seeded with the given values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: make(map[string]string)}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *MemoryStore) All(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}

	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) SetAll(ctx context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}
