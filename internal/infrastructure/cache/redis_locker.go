package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisLocker implements shared.Locker on top of redislock.
// Suitable when several server instances integrate the same expenses.
type RedisLocker struct {
	client    *redislock.Client
	keyPrefix string
}

// NewRedisLocker creates a locker backed by an existing Redis client.
// An empty keyPrefix keeps keys as given by the caller.
func NewRedisLocker(rdb redis.UniversalClient, keyPrefix string) *RedisLocker {
	return &RedisLocker{
		client:    redislock.New(rdb),
		keyPrefix: keyPrefix,
	}
}

// Obtain tries once to take key. Retries are left to the caller.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	lock, err := l.client.Obtain(ctx, l.keyPrefix+key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, shared.ErrLockNotObtained
		}
		return nil, fmt.Errorf("failed to obtain lock %q: %w", key, err)
	}
	return &redisLock{lock: lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

func (r *redisLock) Release(ctx context.Context) error {
	err := r.lock.Release(ctx)
	if err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return fmt.Errorf("failed to release lock %q: %w", r.lock.Key(), err)
	}
	return nil
}

// NewRedisClient opens a Redis client and verifies the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}
