package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client := NewRedis(RedisConfig{Addr: addr})
	defer client.Close()

	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), addr)
}

func TestSetNX(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(RedisConfig{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	ok, err := SetNX(ctx, client, "trtc:room:1", 1700000000, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = SetNX(ctx, client, "trtc:room:1", 1700000001, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second writer must not overwrite the lease")

	value, err := mr.Get("trtc:room:1")
	require.NoError(t, err)
	assert.Equal(t, "1700000000", value)
	assert.Equal(t, time.Minute, mr.TTL("trtc:room:1"))
}
