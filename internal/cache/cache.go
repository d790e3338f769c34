// Package cache provides a TTL key/value cache shared by the read paths
// of the settings and prompt stores.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Stats holds cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	StaleHits int64
	Evictions int64
	Size      int64
}

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// Cache is an in-memory TTL cache. Expiry is checked lazily on read; a
// background sweep evicts expired entries to bound memory but is not
// required for correctness.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stats   Stats

	sweepEvery time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// New creates a cache and starts its sweep goroutine.
func New(sweepEvery time.Duration) *Cache {
	if sweepEvery <= 0 {
		sweepEvery = 10 * time.Minute
	}

	c := &Cache{
		entries:    make(map[string]*entry),
		sweepEvery: sweepEvery,
		done:       make(chan struct{}),
	}

	go c.sweep()

	return c
}

// Get returns the unexpired value for key.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		c.mu.Lock()
		c.stats.Misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()

	return e.value, true
}

// Set stores a value with the given TTL, overwriting any previous entry.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		value:    value,
		storedAt: time.Now(),
		ttl:      ttl,
	}
	c.stats.Size = int64(len(c.entries))
}

// GetOrSet returns the cached value for key if unexpired; otherwise it
// invokes producer and stores the result. If producer fails and an
// expired entry is still present, the stale value is returned instead of
// the error (availability over freshness). With no stale entry, the
// producer's error propagates.
//
// Two concurrent misses on the same key may both invoke producer; the
// later write wins.
func (c *Cache) GetOrSet(ctx context.Context, key string, ttl time.Duration, producer func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := producer(ctx)
	if err == nil {
		c.Set(key, v, ttl)
		return v, nil
	}

	c.mu.Lock()
	stale, ok := c.entries[key]
	if ok {
		c.stats.StaleHits++
	}
	c.mu.Unlock()

	if ok {
		log.Warn().Err(err).Str("key", keyPreview(key)).Msg("producer failed, serving stale cache entry")
		return stale.value, nil
	}

	return nil, err
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.stats.Size = int64(len(c.entries))
}

// InvalidatePattern removes every entry whose key contains substr and
// returns the number removed. Writers use this to bust related reads
// without knowing their exact keys.
func (c *Cache) InvalidatePattern(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, substr) {
			delete(c.entries, key)
			removed++
		}
	}
	c.stats.Size = int64(len(c.entries))

	if removed > 0 {
		log.Debug().Str("pattern", substr).Int("removed", removed).Msg("invalidated cache entries")
	}
	return removed
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.stats.Size = 0
}

// Stats returns a snapshot of cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Close stops the background sweep goroutine.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// sweep periodically evicts expired entries. It only evicts, never
// blocks in-flight reads beyond the map lock.
func (c *Cache) sweep() {
	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.entries {
				if e.expired(now) {
					delete(c.entries, key)
					c.stats.Evictions++
				}
			}
			c.stats.Size = int64(len(c.entries))
			c.mu.Unlock()
		}
	}
}

func keyPreview(key string) string {
	if len(key) > 48 {
		return key[:48] + "..."
	}
	return key
}

// GetOrSet is the typed variant of Cache.GetOrSet. A cached value of the
// wrong type counts as a miss.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, producer func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.GetOrSet(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return producer(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return producer(ctx)
	}
	return typed, nil
}
