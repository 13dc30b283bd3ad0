package transport

import (
	"context"
	"net/url"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const cacheKeyPrefix = "countdown:transport:"

// CachingTransport keeps successful response bodies for stop metadata requests, which change rarely
type CachingTransport struct {
	Next  Transport
	Cache cache.CacheInterface[string]
}

func NewRedisCachingTransport(next Transport, client *redis.Client, expiration time.Duration) *CachingTransport {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &CachingTransport{
		Next:  next,
		Cache: cache.New[string](redisStore),
	}
}

func (t *CachingTransport) Get(ctx context.Context, requestURL string) (*Response, error) {
	key := cacheKeyPrefix + requestURL

	if body, err := t.Cache.Get(ctx, key); err == nil {
		parsedURL, _ := url.Parse(requestURL)

		log.Debug().Str("url", requestURL).Msg("Transport cache hit")
		return &Response{
			URL:        parsedURL,
			StatusCode: 200,
			Body:       []byte(body),
		}, nil
	}

	resp, err := t.Next.Get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	if resp.IsSuccess() {
		if err := t.Cache.Set(ctx, key, string(resp.Body)); err != nil {
			log.Warn().Err(err).Str("url", requestURL).Msg("Failed to cache response")
		}
	}

	return resp, nil
}
