package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtosalon/config"
)

type cachedItem struct {
	Brand string
	Price float64
}

func setupCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	return c
}

func TestSetAndGet(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	expected := cachedItem{Brand: "BMW", Price: 50000}
	require.NoError(t, c.Set(ctx, "catalog:categories", expected, time.Minute))

	var actual cachedItem
	found, err := c.Get(ctx, "catalog:categories", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetMissingKey(t *testing.T) {
	c := setupCache(t)

	var out cachedItem
	found, err := c.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, c.Invalidate(ctx, "a", "b"))
	require.NoError(t, c.Invalidate(ctx))

	var out string
	found, err := c.Get(ctx, "a", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetCorruptValue(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.db.Set(ctx, "bad", "not-json", time.Minute).Err())

	var out cachedItem
	found, err := c.Get(ctx, "bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestNewUnreachableServer(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Nil(t, c)
	assert.Error(t, err)
}
