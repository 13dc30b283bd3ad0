package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
)

type Watcher struct {
	Connection rmq.Connection

	NumberConsumers int
	BatchSize       int

	Timeout time.Duration

	Consumer rmq.BatchConsumer
}

func (w *Watcher) Setup() error {
	log.Info().Str("queue", QueueName).Msg("Starting consumers")

	queue, err := w.Connection.OpenQueue(QueueName)
	if err != nil {
		return err
	}
	if err := queue.StartConsuming(int64(w.NumberConsumers*w.BatchSize), 1*time.Second); err != nil {
		return err
	}

	for i := 0; i < w.NumberConsumers; i++ {
		log.Info().Msgf("Starting %s consumer %d", QueueName, i)

		if _, err := queue.AddBatchConsumer(fmt.Sprintf("watch-%d", i), int64(w.BatchSize), w.Timeout, w.Consumer); err != nil {
			return err
		}
	}

	return nil
}

// PrintConsumer writes each event envelope to the log
type PrintConsumer struct {
	Pretty bool
}

func (c *PrintConsumer) Consume(batch rmq.Deliveries) {
	for _, payload := range batch.Payloads() {
		var envelope Envelope
		if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
			log.Error().Err(err).Msg("Failed to decode event envelope")
			continue
		}

		if c.Pretty {
			pretty.Println(envelope.Type, envelope.Timestamp, string(envelope.Body))
		} else {
			log.Info().
				Str("id", envelope.ID).
				Str("type", string(envelope.Type)).
				Time("timestamp", envelope.Timestamp).
				RawJSON("body", envelope.Body).
				Msg("Event")
		}
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack event")
		}
	}
}
