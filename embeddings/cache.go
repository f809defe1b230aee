package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/wikirag/log"
)

// CachedEmbedder wraps an Embedder with a Redis cache keyed by content hash,
// so re-indexing a document does not re-embed chunks whose text is unchanged.
// Cache failures are never fatal; the wrapped embedder is always the source
// of truth.
type CachedEmbedder struct {
	inner Embedder
	rdb   *redis.Client
	ttl   time.Duration
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder creates a caching decorator around inner. A zero ttl
// means cached vectors never expire.
func NewCachedEmbedder(inner Embedder, rdb *redis.Client, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

// Embed returns the cached vector when present, otherwise embeds through the
// wrapped provider and stores the result.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := e.cacheKey(text)

	if data, err := e.rdb.Get(ctx, key).Bytes(); err == nil {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil && len(vec) == e.inner.Dimension() {
			return vec, nil
		}
		// Corrupt or stale-dimension entry; drop it and re-embed.
		e.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Warn("embedding cache read failed: %v", err)
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if err := e.rdb.Set(ctx, key, data, e.ttl).Err(); err != nil {
			log.Warn("embedding cache write failed: %v", err)
		}
	}

	return vec, nil
}

// Dimension returns the wrapped embedder's dimension.
func (e *CachedEmbedder) Dimension() int {
	return e.inner.Dimension()
}

// Provider returns the wrapped embedder's provider identifier.
func (e *CachedEmbedder) Provider() string {
	return e.inner.Provider()
}

func (e *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("wikirag:emb:%s:%d:%x", e.inner.Provider(), e.inner.Dimension(), sum)
}
