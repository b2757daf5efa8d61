package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/sma-finance-mirror/pkg/config"
)

// NewRedis returns a configured Redis client used for both payload caching and
// the upstream change feed.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(Options(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return client, nil
}

// Options maps configuration onto redis client options.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
