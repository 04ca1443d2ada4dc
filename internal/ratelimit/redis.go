// Package ratelimit caps how fast one BFF session can drive the CRM backend.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
)

// Window is the sliding window every limit is counted over.
const Window = time.Minute

// RedisRateLimiter implements rate limiting using Redis sliding window algorithm
type RedisRateLimiter struct {
	client              redis.Cmdable
	rateLimitRejections metric.Int64Counter
	now                 func() time.Time
}

// NewRedisRateLimiter creates a new Redis-based rate limiter
func NewRedisRateLimiter(client redis.Cmdable, rateLimitRejections metric.Int64Counter) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:              client,
		rateLimitRejections: rateLimitRejections,
		now:                 time.Now,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("ratelimit:session:%s", sessionID)
}

// AllowRequest records one request of sessionID and reports whether it fits in
// limit per Window, along with how many requests remain.
func (rl *RedisRateLimiter) AllowRequest(ctx context.Context, sessionID string, limit int) (bool, int, error) {
	now := rl.now()
	windowStart := now.Add(-Window)
	key := sessionKey(sessionID)

	pipe := rl.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixMilli()))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	countCmd := pipe.ZCard(ctx, key)
	// Twice the window so idle keys clean themselves up.
	pipe.Expire(ctx, key, 2*Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count, err := countCmd.Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to get count: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	allowed := count <= int64(limit)
	if !allowed && rl.rateLimitRejections != nil {
		rl.rateLimitRejections.Add(ctx, 1)
	}
	return allowed, remaining, nil
}

// Reset forgets the window of sessionID, used on logout.
func (rl *RedisRateLimiter) Reset(ctx context.Context, sessionID string) error {
	if err := rl.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}
