// Package ratelimit implements a fixed-window request counter on Redis,
// used to bound abusive call patterns on public endpoints.
//
// The window is a true fixed window: the counter's TTL is set once on the
// first request and never refreshed, so counts reset entirely at window
// boundaries rather than sliding.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Limiter counts requests per (scope, identity) pair in fixed windows.
type Limiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// New returns a Limiter allowing max requests per window.
func New(client *redis.Client, max int, window time.Duration) *Limiter {
	return &Limiter{client: client, max: max, window: window}
}

func (l *Limiter) key(scope, identity string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, identity)
}

// Allow reports whether the request fits in the current window.
//
// Failure policy is fail-open: any backend error allows the request. A rate
// limiter is a non-critical control and must never block traffic because of
// an infrastructure fault.
func (l *Limiter) Allow(ctx context.Context, scope, identity string) bool {
	key := l.key(scope, identity)

	count, err := l.client.Get(ctx, key).Int()
	if err == redis.Nil {
		if err := l.client.Set(ctx, key, 1, l.window).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limit window start failed, allowing")
		}
		return true
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit read failed, allowing")
		return true
	}

	if count >= l.max {
		return false
	}

	// INCR without touching the TTL keeps the window fixed.
	if err := l.client.Incr(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit increment failed, allowing")
	}
	return true
}
