package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"onboarding-service/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewClient builds the shared Redis client. Ownership lives in the
// composition root so the services receive it injected instead of dialing
// their own connections.
func NewClient(cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
	}

	return rdb
}
