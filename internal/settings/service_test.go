package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versecraft/versecraft/internal/cache"
	"github.com/versecraft/versecraft/internal/notify"
)

func newTestService(t *testing.T, store Store) (*Service, *cache.Cache) {
	t.Helper()
	c := cache.New(time.Hour)
	t.Cleanup(c.Close)
	return NewService(store, c, notify.NewBus(), time.Hour), c
}

func TestService_AllCachesStoreReads(t *testing.T) {
	store := NewMemoryStore(map[string]string{"ai_provider": "gemini"})
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	values, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gemini", values["ai_provider"])

	// A direct store write without going through the service is not
	// visible until the cache entry is busted.
	require.NoError(t, store.Set(ctx, "ai_provider", "groq"))

	values, err = svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gemini", values["ai_provider"])
}

func TestService_SetBustsCache(t *testing.T) {
	store := NewMemoryStore(nil)
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.All(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Set(ctx, "ai_provider", "groq"))

	v, ok := svc.Get(ctx, "ai_provider")
	require.True(t, ok)
	assert.Equal(t, "groq", v)
}

func TestService_StaleSnapshotWhenStoreUnreachable(t *testing.T) {
	store := NewMemoryStore(map[string]string{"ai_provider": "openai"})
	c := cache.New(time.Hour)
	t.Cleanup(c.Close)
	svc := NewService(store, c, notify.NewBus(), time.Millisecond)
	ctx := context.Background()

	_, err := svc.All(ctx)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	store.Err = errors.New("connection refused")

	values, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "openai", values["ai_provider"])
}

func TestService_ErrorWhenNoSnapshot(t *testing.T) {
	store := NewMemoryStore(nil)
	store.Err = errors.New("connection refused")
	svc, _ := newTestService(t, store)

	_, err := svc.All(context.Background())
	require.Error(t, err)

	_, ok := svc.Get(context.Background(), "anything")
	assert.False(t, ok)
}

func TestService_UpdatePublishesChange(t *testing.T) {
	store := NewMemoryStore(nil)
	c := cache.New(time.Hour)
	t.Cleanup(c.Close)

	bus := notify.NewBus()
	events := make(chan notify.Event, 1)
	bus.Subscribe(notify.TopicConfigChanged, func(ev notify.Event) {
		events <- ev
	})

	svc := NewService(store, c, bus, time.Hour)
	require.NoError(t, svc.Update(context.Background(), map[string]string{
		"ai_provider":  "gemini",
		"gemini_model": "gemini-1.5-pro",
	}))

	select {
	case ev := <-events:
		assert.Equal(t, notify.TopicConfigChanged, ev.Topic)
	case <-time.After(2 * time.Second):
		t.Fatal("no configChanged event published")
	}
}
