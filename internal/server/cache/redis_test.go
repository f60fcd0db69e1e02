package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErr(t *testing.T) {
	assert.ErrorIs(t, mapErr(redis.Nil), common.ErrorNotFound)

	down := errors.New("connection refused")
	err := mapErr(down)
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisCache_UnreachableServer(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	c := NewRedisCache(client)
	ctx := context.Background()

	_, err := c.Get(ctx, "principal:u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)

	assert.Error(t, c.Set(ctx, "principal:u1", []byte("{}"), time.Minute))
	assert.Error(t, c.Del(ctx, "principal:u1"))
	assert.NoError(t, c.Del(ctx))
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Connect(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
	assert.Nil(t, client)
}
