package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DistributedRateLimiter implements fixed-window rate limiting in Redis so
// limits are shared across instances
type DistributedRateLimiter struct {
	redis  *redis.Client
	config *RateLimitConfig
	prefix string
	now    func() time.Time
}

// NewDistributedRateLimiter creates a new Redis-backed rate limiter
func NewDistributedRateLimiter(redisClient *redis.Client, config *RateLimitConfig, prefix string) *DistributedRateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &DistributedRateLimiter{
		redis:  redisClient,
		config: config,
		prefix: prefix,
		now:    time.Now,
	}
}

// windowKey returns the counter key and the end of the current window
func (rl *DistributedRateLimiter) windowKey(key string) (string, time.Time) {
	window := rl.now().Truncate(rl.config.WindowDuration)
	return fmt.Sprintf("%s:%s:%d", rl.prefix, key, window.Unix()), window.Add(rl.config.WindowDuration)
}

// Allow implements Limiter
func (rl *DistributedRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey, reset := rl.windowKey(key)

	pipe := rl.redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.WindowDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("redis error: %w", err)
	}

	limit := rl.config.RequestsPerWindow + rl.config.BurstSize
	count := int(incr.Val())
	return Decision{
		Allowed:   count <= limit,
		Limit:     rl.config.RequestsPerWindow,
		Remaining: max(limit-count, 0),
		Reset:     reset,
	}, nil
}

// Reset clears the current window for key
func (rl *DistributedRateLimiter) Reset(ctx context.Context, key string) error {
	redisKey, _ := rl.windowKey(key)
	return rl.redis.Del(ctx, redisKey).Err()
}
