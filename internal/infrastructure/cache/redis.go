package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/practice-scoring/pkg/config"
)

const ledgerKeyPrefix = "webhook:elevenlabs:delivery:"

// NewRedisClient connects to Redis, retrying the initial ping briefly
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second
	ping := func() error {
		return client.Ping(ctx).Err()
	}
	if err := backoff.Retry(ping, backoff.WithContext(bo, ctx)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Redis.Addr, err)
	}

	log.Println("✅ Redis connected successfully")
	return client, nil
}

// RedisLedger remembers applied webhook deliveries in Redis so every API
// replica short-circuits the same redelivery
type RedisLedger struct {
	client redis.Cmdable
}

// NewRedisLedger creates a ledger backed by client
func NewRedisLedger(client redis.Cmdable) *RedisLedger {
	return &RedisLedger{client: client}
}

// Remember stores sessionID under key until ttl elapses
func (l *RedisLedger) Remember(ctx context.Context, key, sessionID string, ttl time.Duration) error {
	return l.client.Set(ctx, ledgerKeyPrefix+key, sessionID, ttl).Err()
}

// Lookup returns the session recorded for key
func (l *RedisLedger) Lookup(ctx context.Context, key string) (string, bool, error) {
	v, err := l.client.Get(ctx, ledgerKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
