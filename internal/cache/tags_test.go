package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*TagCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTagCache(client, time.Minute), mr
}

func TestTagCacheRoundTrip(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	tags := []models.Tag{{ID: 1, Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}}
	require.NoError(t, c.Set(ctx, tags))
	assert.Equal(t, time.Minute, mr.TTL(tagListKey))

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tags, got)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTagCacheExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []models.Tag{{ID: 1, Slug: "lunch"}}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTagCacheCorruptEntry(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set(tagListKey, "not json"))

	_, _, err := c.Get(context.Background())
	assert.Error(t, err)
}
