package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	_, err := c.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	m := c.GetMetrics()
	assert.Equal(t, int64(1), m.CacheHits)
	assert.Equal(t, int64(1), m.CacheMisses)
	assert.InDelta(t, 0.5, m.HitRatio, 1e-9)
	assert.Equal(t, int64(1), m.TotalKeys)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	now = now.Add(2 * time.Second)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { now = now.Add(time.Millisecond); return now }

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
