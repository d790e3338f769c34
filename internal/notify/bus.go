// Package notify provides fire-and-forget change notification for
// mutations to settings and prompts. Delivery is best-effort: the
// version numbers in the stores remain the source of truth.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Topics emitted by the core.
const (
	TopicConfigChanged  = "config.changed"
	TopicPromptsChanged = "prompts.changed"
)

// Event is a notification broadcast to subscribers.
type Event struct {
	Topic   string    `json:"topic"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Handler processes an event. Handlers must not block; they run on a
// delivery goroutine shared per publish.
type Handler func(Event)

// Publisher is the write-side interface mutating services depend on.
type Publisher interface {
	Publish(topic string, payload any)
}

// SubscriptionID identifies a subscription for later removal.
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus is an in-process publish/subscribe channel. Suitable for a
// single-instance deployment; see Broadcaster for multi-instance.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID SubscriptionID
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic string, h Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})
	return id
}

// Unsubscribe removes a subscription by ID.
func (b *Bus) Unsubscribe(topic string, id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers an event to all subscribers of the topic. Handlers
// run asynchronously; a panicking handler is logged and skipped.
func (b *Bus) Publish(topic string, payload any) {
	ev := Event{Topic: topic, Payload: payload, At: time.Now()}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	go func() {
		for _, s := range subs {
			deliver(s.handler, ev)
		}
	}()
}

func deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Str("topic", ev.Topic).Msg("event handler panicked")
		}
	}()
	h(ev)
}
