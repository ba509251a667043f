package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window issuance counter. Intended throttling
// policy for OTP resends is still an open product question, so this is not
// wired into the auth service by default.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int64, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	redisKey := fmt.Sprintf("otp_rl:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open: limiter trouble should not lock users out.
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, redisKey, l.window)
	}

	return count <= l.limit
}
