package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements TagCache backed by Redis
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed tag cache
func NewRedisCache(address, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		prefix: "cache:",
	}, nil
}

// GetOrCompute returns the cached value for a tag, computing it on a miss.
// A cache read failure degrades to a direct compute; a cache write failure
// is logged and the computed value is still returned.
func (c *RedisCache) GetOrCompute(ctx context.Context, tag string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	key := c.prefix + tag

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, redis.Nil) {
		slog.Warn("cache read failed, computing directly", "tag", tag, "error", err)
	}

	data, err = compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		slog.Warn("cache write failed", "tag", tag, "error", err)
	}

	return data, nil
}

// Invalidate drops a tag. Deleting an absent key is harmless, so repeated
// invalidation is idempotent.
func (c *RedisCache) Invalidate(ctx context.Context, tag string) error {
	if err := c.client.Del(ctx, c.prefix+tag).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tag %s: %w", tag, err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
