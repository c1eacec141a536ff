// Package redis provides the Redis client and the login-attempt counter
// store backed by it.
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewClient creates and pings a Redis client with optional password auth.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
