// Package ratelimit provides a fixed-window request limiter keyed by
// client IP and action name.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps Redis transport failures so callers can map them to
// a dependency-failure response instead of a rate-limit rejection.
var ErrUnavailable = errors.New("rate limiter unavailable")

// Limiter reports whether a request for the given key is allowed inside
// the current window, incrementing the counter as a side effect.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RedisLimiter counts requests in Redis. INCR is atomic, so concurrent
// requests for the same key cannot lose updates, and the key TTL set on
// the first hit expires stale windows without any sweeper.
type RedisLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

func NewRedisLimiter(client *redis.Client, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	rkey := "rl:" + key

	count, err := l.client.Incr(ctx, rkey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, rkey, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if count > int64(l.maxRequests) {
		ttl, err := l.client.TTL(ctx, rkey).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return false, ttl, nil
	}

	return true, 0, nil
}
