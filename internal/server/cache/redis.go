// Package cache wraps Redis as a small byte-oriented key/value cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/redis/go-redis/v9"
)

// Connect opens a Redis client and pings it. The caller decides whether a
// failure is fatal; the server runs without a cache in that case.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          0,
		DialTimeout: 2 * time.Second,
		MaxRetries:  1,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// RedisCache adapts a redis client to the cache interfaces used by the
// repositories. A missing key is reported as common.ErrorNotFound.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func mapErr(err error) error {
	if errors.Is(err, redis.Nil) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("redis: %w", err)
}
