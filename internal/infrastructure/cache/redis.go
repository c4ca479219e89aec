// Package cache provides the Redis-backed cache-aside store shared by the
// analytics orchestrator and the rate limiter.
//
// The store is advisory: every caller must tolerate a miss, including
// spurious misses caused by backend unavailability, by recomputing from the
// source of truth. No single-flight protection is provided; concurrent
// misses on the same key may each recompute and overwrite, which is an
// accepted tradeoff for a read-heavy workload.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store wraps a Redis client with the cache-aside contract.
type Store struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Store{client: rdb}, nil
}

// NewWithClient wraps an existing client. Used by tests and by components
// that share one connection pool.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Client exposes the underlying Redis client for single-key atomic
// operations (the rate limiter's counters).
func (s *Store) Client() *redis.Client {
	return s.client
}

// Get retrieves a value. The second return is false on a miss; redis.Nil is
// a miss, not an error.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return []byte(val), true, nil
}

// Set stores a value with the given TTL.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a single key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// DeleteByPrefix removes every key under the prefix. Used for bulk
// invalidation of a cached domain after a write-side collaborator updates
// the underlying data.
func (s *Store) DeleteByPrefix(ctx context.Context, prefix string) error {
	keys, err := s.client.Keys(ctx, prefix+"*").Result()
	if err != nil {
		return fmt.Errorf("redis keys: %w", err)
	}
	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis delete by prefix: %w", err)
		}
	}
	return nil
}

// TTLRemaining reports the remaining lifetime of a key. The second return is
// false when the key is absent or has no expiry.
func (s *Store) TTLRemaining(ctx context.Context, key string) (time.Duration, bool, error) {
	d, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, false, fmt.Errorf("redis ttl: %w", err)
	}
	if d < 0 {
		return 0, false, nil
	}
	return d, true, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
