package database

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the go-redis client that backs OTP challenges and
// reset-token hashes.
type RedisClient struct{ *redis.Client }

// NewRedis creates a Redis client for the given address and database.
func NewRedis(addr, pass string, db int) *RedisClient {
	return &RedisClient{redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// Ping verifies connectivity at startup.
func (c *RedisClient) Ping(ctx context.Context) error { return c.Client.Ping(ctx).Err() }
