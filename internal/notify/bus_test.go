package notify

import (
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestBus_PublishDeliversToSubscribers(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	var got []Event
	b.Subscribe(TopicPromptsChanged, func(ev Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	b.Publish(TopicPromptsChanged, "generate")

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0].Topic != TopicPromptsChanged {
		t.Errorf("Topic = %q, want %q", got[0].Topic, TopicPromptsChanged)
	}
	if got[0].Payload != "generate" {
		t.Errorf("Payload = %v, want generate", got[0].Payload)
	}
}

func TestBus_PublishIgnoresOtherTopics(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	count := 0
	b.Subscribe(TopicConfigChanged, func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	b.Publish(TopicPromptsChanged, nil)
	b.Publish(TopicConfigChanged, nil)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	})
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	count := 0
	id := b.Subscribe(TopicConfigChanged, func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	b.Unsubscribe(TopicConfigChanged, id)

	b.Publish(TopicConfigChanged, nil)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("handler called %d times after Unsubscribe, want 0", count)
	}
}

func TestBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	b := NewBus()

	b.Subscribe(TopicConfigChanged, func(Event) {
		panic("boom")
	})

	var mu sync.Mutex
	delivered := false
	b.Subscribe(TopicConfigChanged, func(Event) {
		mu.Lock()
		delivered = true
		mu.Unlock()
	})

	b.Publish(TopicConfigChanged, nil)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered
	})
}
