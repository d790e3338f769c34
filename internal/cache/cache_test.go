package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	c.Set("key1", "value1", time.Hour)

	v, ok := c.Get("key1")
	if !ok {
		t.Fatal("Get() returned false, want true")
	}
	if v.(string) != "value1" {
		t.Errorf("Get() = %v, want value1", v)
	}

	_, ok = c.Get("nonexistent")
	if ok {
		t.Error("Get(nonexistent) returned true, want false")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	c.Set("expiring", "value", 1*time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("expiring"); ok {
		t.Error("Get() returned true for expired entry")
	}
}

func TestCache_GetOrSet_DoesNotReinvokeProducer(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()
	ctx := context.Background()

	calls := 0
	producer := func(ctx context.Context) (any, error) {
		calls++
		return "produced", nil
	}

	v1, err := c.GetOrSet(ctx, "k", time.Hour, producer)
	if err != nil {
		t.Fatalf("GetOrSet() error: %v", err)
	}
	v2, err := c.GetOrSet(ctx, "k", time.Hour, producer)
	if err != nil {
		t.Fatalf("GetOrSet() error: %v", err)
	}

	if v1 != v2 {
		t.Errorf("second GetOrSet() = %v, want %v", v2, v1)
	}
	if calls != 1 {
		t.Errorf("producer called %d times, want 1", calls)
	}
}

func TestCache_GetOrSet_StaleOnError(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()
	ctx := context.Background()

	calls := 0
	producer := func(ctx context.Context) (any, error) {
		calls++
		if calls == 1 {
			return "first", nil
		}
		return nil, errors.New("store unreachable")
	}

	if _, err := c.GetOrSet(ctx, "k", 1*time.Millisecond, producer); err != nil {
		t.Fatalf("GetOrSet() error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	v, err := c.GetOrSet(ctx, "k", 1*time.Millisecond, producer)
	if err != nil {
		t.Fatalf("GetOrSet() error on stale path: %v", err)
	}
	if v.(string) != "first" {
		t.Errorf("stale GetOrSet() = %v, want first", v)
	}

	stats := c.Stats()
	if stats.StaleHits != 1 {
		t.Errorf("StaleHits = %d, want 1", stats.StaleHits)
	}
}

func TestCache_GetOrSet_ErrorWithoutStale(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	wantErr := errors.New("producer failed")
	_, err := c.GetOrSet(context.Background(), "missing", time.Hour, func(ctx context.Context) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet() error = %v, want %v", err, wantErr)
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	c.Set("k", "v", time.Hour)
	c.Invalidate("k")

	if _, ok := c.Get("k"); ok {
		t.Error("Get() returned true after Invalidate()")
	}
}

func TestCache_InvalidatePattern(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	c.Set("prompts:active:generate", 1, time.Hour)
	c.Set("prompts:active:explain", 2, time.Hour)
	c.Set("settings:all", 3, time.Hour)

	removed := c.InvalidatePattern("prompts")
	if removed != 2 {
		t.Errorf("InvalidatePattern() removed %d, want 2", removed)
	}

	if _, ok := c.Get("prompts:active:generate"); ok {
		t.Error("matching key survived InvalidatePattern()")
	}
	if _, ok := c.Get("settings:all"); !ok {
		t.Error("non-matching key removed by InvalidatePattern()")
	}
}

func TestCache_TypedGetOrSet(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	v, err := GetOrSet(context.Background(), c, "typed", time.Hour, func(ctx context.Context) (map[string]string, error) {
		return map[string]string{"a": "b"}, nil
	})
	if err != nil {
		t.Fatalf("GetOrSet() error: %v", err)
	}
	if v["a"] != "b" {
		t.Errorf(`v["a"] = %q, want "b"`, v["a"])
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(time.Hour)
	defer c.Close()

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)
	c.Clear()

	if stats := c.Stats(); stats.Size != 0 {
		t.Errorf("Size = %d after Clear(), want 0", stats.Size)
	}
}
