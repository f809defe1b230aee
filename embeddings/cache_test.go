package embeddings

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder counts how many Embed calls reach the real provider.
type countingEmbedder struct {
	calls  atomic.Int64
	vector []float32
}

func (c *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	c.calls.Add(1)
	return c.vector, nil
}

func (c *countingEmbedder) Dimension() int   { return len(c.vector) }
func (c *countingEmbedder) Provider() string { return "counting" }

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCachedEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("second embed hits the cache", func(t *testing.T) {
		inner := &countingEmbedder{vector: []float32{1, 2, 3}}
		cached := NewCachedEmbedder(inner, newTestRedis(t), time.Hour)

		vec, err := cached.Embed(ctx, "photosynthesis")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3}, vec)

		vec, err = cached.Embed(ctx, "photosynthesis")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3}, vec)

		assert.Equal(t, int64(1), inner.calls.Load())
	})

	t.Run("distinct texts embed separately", func(t *testing.T) {
		inner := &countingEmbedder{vector: []float32{1}}
		cached := NewCachedEmbedder(inner, newTestRedis(t), 0)

		_, err := cached.Embed(ctx, "alpha")
		require.NoError(t, err)
		_, err = cached.Embed(ctx, "beta")
		require.NoError(t, err)

		assert.Equal(t, int64(2), inner.calls.Load())
	})

	t.Run("provider errors pass through", func(t *testing.T) {
		cached := NewCachedEmbedder(&failingEmbedder{}, newTestRedis(t), 0)

		_, err := cached.Embed(ctx, "alpha")
		assert.Error(t, err)
	})

	t.Run("redis down falls through to provider", func(t *testing.T) {
		inner := &countingEmbedder{vector: []float32{1, 2}}
		rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
		cached := NewCachedEmbedder(inner, rdb, 0)

		vec, err := cached.Embed(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2}, vec)
		assert.Equal(t, int64(1), inner.calls.Load())
	})

	t.Run("delegates dimension and provider", func(t *testing.T) {
		inner := &countingEmbedder{vector: []float32{1, 2, 3}}
		cached := NewCachedEmbedder(inner, newTestRedis(t), 0)

		assert.Equal(t, 3, cached.Dimension())
		assert.Equal(t, "counting", cached.Provider())
	})
}
