package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Leases are best effort, so a dead Redis must not hold a request for long
const (
	defaultDialTimeout = 2 * time.Second
	defaultOpTimeout   = time.Second
)

// RedisConfig selects the Redis database holding room id leases
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisClient wraps the go-redis client used for room id leases
type RedisClient struct{ *redis.Client }

// NewRedis creates a client with short timeouts and a single retry
func NewRedis(cfg RedisConfig) *RedisClient {
	return &RedisClient{redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultOpTimeout,
		WriteTimeout: defaultOpTimeout,
		MaxRetries:   1,
	})}
}

// Ping checks the connection and names the address on failure
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping %s: %w", c.Options().Addr, err)
	}
	return nil
}

// SetNX stores val under key unless the key exists, reporting whether it was stored
func SetNX(ctx context.Context, r *RedisClient, key string, val any, ttl time.Duration) (bool, error) {
	return r.SetNX(ctx, key, val, ttl).Result()
}
