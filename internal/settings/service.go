package settings

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/versecraft/versecraft/internal/cache"
	"github.com/versecraft/versecraft/internal/notify"
)

const cacheKeyAll = "settings:all"

// DefaultTTL is how long the settings map stays cached between reads.
const DefaultTTL = 5 * time.Minute

// Service serves settings reads through the shared cache and busts
// related entries on writes.
type Service struct {
	store Store
	cache *cache.Cache
	bus   notify.Publisher
	ttl   time.Duration
}

// NewService wires a store to the cache and notification bus.
func NewService(store Store, c *cache.Cache, bus notify.Publisher, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{store: store, cache: c, bus: bus, ttl: ttl}
}

// All returns the full settings map, cached. When the store is
// unreachable a stale snapshot is served if one exists; otherwise the
// error propagates and callers fall back to environment configuration.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	return cache.GetOrSet(ctx, s.cache, cacheKeyAll, s.ttl, func(ctx context.Context) (map[string]string, error) {
		return s.store.All(ctx)
	})
}

// Get returns a single setting, or ok=false when absent or the store
// is unreachable with no cached snapshot.
func (s *Service) Get(ctx context.Context, key string) (string, bool) {
	values, err := s.All(ctx)
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

// Set writes one key, busts cached settings reads, and notifies
// listeners.
func (s *Service) Set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		return err
	}
	s.afterWrite([]string{key})
	return nil
}

// Update writes several keys atomically.
func (s *Service) Update(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	if err := s.store.SetAll(ctx, values); err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	s.afterWrite(keys)
	return nil
}

func (s *Service) afterWrite(keys []string) {
	s.cache.InvalidatePattern("settings")
	if s.bus != nil {
		s.bus.Publish(notify.TopicConfigChanged, keys)
	}
	log.Debug().Strs("keys", keys).Msg("settings updated")
}
