package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const subjectPrefix = "versecraft.events."

// Broadcaster extends a local Bus across instances over NATS. Each
// publish goes to the local bus and to the shared subject; events
// received from other instances are replayed onto the local bus.
// Delivery stays best-effort and at-most-once per instance.
type Broadcaster struct {
	bus      *Bus
	nc       *nats.Conn
	sub      *nats.Subscription
	instance string
}

type wireEvent struct {
	Instance string          `json:"instance"`
	Topic    string          `json:"topic"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	At       time.Time       `json:"at"`
}

// NewBroadcaster connects to NATS and bridges the given bus.
func NewBroadcaster(url string, bus *Bus) (*Broadcaster, error) {
	opts := []nats.Option{
		nats.Name("versecraft-core"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("reconnected to NATS")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("disconnected from NATS")
			}
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	b := &Broadcaster{
		bus:      bus,
		nc:       nc,
		instance: uuid.NewString(),
	}

	sub, err := nc.Subscribe(subjectPrefix+">", b.onMessage)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to event subjects: %w", err)
	}
	b.sub = sub

	log.Info().Str("url", url).Msg("change notifications bridged over NATS")
	return b, nil
}

// Publish delivers locally and broadcasts to other instances.
func (b *Broadcaster) Publish(topic string, payload any) {
	b.bus.Publish(topic, payload)

	raw, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("failed to encode event payload")
		raw = nil
	}

	data, err := json.Marshal(wireEvent{
		Instance: b.instance,
		Topic:    topic,
		Payload:  raw,
		At:       time.Now(),
	})
	if err != nil {
		return
	}

	if err := b.nc.Publish(subjectPrefix+topic, data); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("failed to broadcast event")
	}
}

// onMessage replays events from other instances onto the local bus.
func (b *Broadcaster) onMessage(msg *nats.Msg) {
	var ev wireEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		log.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping malformed event")
		return
	}
	if ev.Instance == b.instance {
		return
	}

	var payload any
	if len(ev.Payload) > 0 {
		_ = json.Unmarshal(ev.Payload, &payload)
	}
	b.bus.Publish(ev.Topic, payload)
}

// Close drains the subscription and closes the connection.
func (b *Broadcaster) Close() {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
	}
	if b.nc != nil {
		b.nc.Close()
	}
}
