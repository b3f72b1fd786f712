package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/benjithedalilama/eat-wild/internal/adapters/redis"
)

// RateLimiter is a fixed-window counter in redis. Fails open on redis
// errors so a cache outage cannot block bookings.
type RateLimiter struct {
	redis *redisadapter.Cache
}

func NewRateLimiter(redis *redisadapter.Cache) *RateLimiter {
	return &RateLimiter{redis: redis}
}

func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	fullKey := "rl:" + key

	pipe := rl.redis.Client().Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, period)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return true
	}

	return incr.Val() <= int64(rate)
}
