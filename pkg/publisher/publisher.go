package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/ctdf"
)

const (
	QueueName = "countdown-events"

	keyPrefix  = "countdown:"
	bufferSize = 256
)

// Envelope is the queued form of a tracker event
type Envelope struct {
	ID        string          `json:"id"`
	Type      ctdf.EventType  `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Body      json.RawMessage `json:"body,omitempty"`
}

// Publisher mirrors tracker events into redis: the latest body of each event type is kept
// under a snapshot key and every event is pushed onto the events queue
type Publisher struct {
	client *redis.Client
	queue  rmq.Queue

	events chan ctdf.Event
}

func New(client *redis.Client, connection rmq.Connection) (*Publisher, error) {
	queue, err := connection.OpenQueue(QueueName)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		client: client,
		queue:  queue,
		events: make(chan ctdf.Event, bufferSize),
	}, nil
}

// SnapshotKey is the redis key holding the latest body of an event type
func SnapshotKey(eventType ctdf.EventType) string {
	return keyPrefix + string(eventType)
}

// Handle queues an event for publishing without blocking the caller. Display ticks carry no
// data and are never published; events are dropped when the buffer is full.
func (p *Publisher) Handle(event ctdf.Event) {
	if event.IsDisplayOnly() {
		return
	}

	select {
	case p.events <- event:
	default:
		log.Warn().Str("type", string(event.Type)).Msg("Publisher buffer full, dropping event")
	}
}

// Run publishes queued events until the context is cancelled
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-p.events:
			if err := p.publish(ctx, event); err != nil {
				log.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to publish event")
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, event ctdf.Event) error {
	body, err := json.Marshal(event.Body)
	if err != nil {
		return err
	}

	if p.client != nil {
		if err := p.client.Set(ctx, SnapshotKey(event.Type), body, 0).Err(); err != nil {
			return err
		}
	}

	envelope := Envelope{
		ID:        uuid.NewString(),
		Type:      event.Type,
		Timestamp: event.Timestamp,
		Body:      body,
	}

	envelopeBytes, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return p.queue.PublishBytes(envelopeBytes)
}
