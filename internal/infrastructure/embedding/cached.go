package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/pricewatch/backend/internal/domain/shared"
	"github.com/pricewatch/backend/internal/infrastructure/cache"
)

// CachedEmbedder wraps an Embedder with a content-addressed vector cache.
// Only the texts that miss the cache are sent to the underlying embedder.
type CachedEmbedder struct {
	inner Embedder
	cache cache.VectorCache
	ttl   time.Duration
}

// NewCachedEmbedder creates a caching wrapper around an embedder
func NewCachedEmbedder(inner Embedder, vectorCache cache.VectorCache, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: vectorCache,
		ttl:   ttl,
	}
}

// CacheKey returns the cache key for an input text
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Embed returns one vector per input, serving repeats from the cache
func (e *CachedEmbedder) Embed(ctx context.Context, inputs []string) ([]shared.Vector, error) {
	out := make([]shared.Vector, len(inputs))
	missing := make([]int, 0, len(inputs))
	missingTexts := make([]string, 0, len(inputs))

	for i, text := range inputs {
		vec, ok, err := e.cache.Get(ctx, CacheKey(text))
		if err == nil && ok {
			out[i] = vec
			continue
		}
		// Cache read failures degrade to an API call
		missing = append(missing, i)
		missingTexts = append(missingTexts, text)
	}

	if len(missing) == 0 {
		return out, nil
	}

	fresh, err := e.inner.Embed(ctx, missingTexts)
	if err != nil {
		return nil, err
	}

	for j, i := range missing {
		out[i] = fresh[j]
		// Best effort; a failed write just means a future API call
		_ = e.cache.Set(ctx, CacheKey(inputs[i]), fresh[j], e.ttl)
	}

	return out, nil
}

// Ensure CachedEmbedder implements Embedder
var _ Embedder = (*CachedEmbedder)(nil)
