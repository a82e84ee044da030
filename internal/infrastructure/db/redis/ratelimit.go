package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter backed by Redis.
// Key format: ratelimit:<scope>:<identity>:<window_start_unix>
type RateLimiter struct {
	client *redis.Client
	scope  string
	max    int64
	window time.Duration
	now    func() time.Time
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// NewRateLimiter allows max requests per window for each identity.
func NewRateLimiter(client *redis.Client, scope string, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, scope: scope, max: int64(max), window: window, now: time.Now}
}

// Allow counts one request for identity in the current window.
func (l *RateLimiter) Allow(ctx context.Context, identity string) (Decision, error) {
	start := l.now().Truncate(l.window)
	key := l.key(identity, start)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit: %w", err)
	}

	return l.decide(incr.Val(), start), nil
}

func (l *RateLimiter) decide(count int64, start time.Time) Decision {
	if count > l.max {
		return Decision{Allowed: false, RetryAfter: start.Add(l.window).Sub(l.now())}
	}
	return Decision{Allowed: true, Remaining: l.max - count}
}

func (l *RateLimiter) key(identity string, start time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", l.scope, identity, start.Unix())
}
