package redis_client

import (
	"context"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/config"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const queueTag = "countdown"

// Connect sets up the shared client and queue connection. Redis is optional, an empty
// address leaves both nil.
func Connect(cfg config.RedisConfig) error {
	if cfg.Address == "" {
		log.Info().Msg("Skipping Redis setup")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = time.Minute

	err := backoff.RetryNotify(func() error {
		return client.Ping(context.Background()).Err()
	}, retryBackoff, func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("wait", wait).Str("address", cfg.Address).Msg("Redis not ready, retrying")
	})
	if err != nil {
		client.Close()
		return err
	}

	errChan := make(chan error, 10)
	go logQueueErrors(errChan)

	queueConnection, err := rmq.OpenConnectionWithRedisClient(queueTag, client, errChan)
	if err != nil {
		client.Close()
		return err
	}

	Client = client
	QueueConnection = queueConnection

	log.Info().Msgf("Redis client setup for %s", cfg.Address)

	return nil
}

func logQueueErrors(errChan <-chan error) {
	for err := range errChan {
		log.Error().Err(err).Msg("Redis queue error")
	}
}

func Close() {
	if QueueConnection != nil {
		<-QueueConnection.StopAllConsuming()
	}

	if Client != nil {
		if err := Client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}
}
