package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/finance-bot/pkg/config"
)

func TestClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := New(ctx, config.RedisConfig{Addr: mr.Addr(), PoolSize: 2})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute).Err())
	val, err := c.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", val)
	assert.Equal(t, 2, c.Options().PoolSize)

	mr.Close()
	assert.Error(t, c.Ping(ctx))
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), config.RedisConfig{Addr: addr})
	require.Error(t, err)
}
