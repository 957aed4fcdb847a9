package cache

import (
	"context"
	"time"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// VectorCache stores embedding vectors keyed by a content hash so texts
// that have not changed never hit the embedding API twice.
type VectorCache interface {
	// Get returns the cached vector and true, or nil and false on a miss.
	Get(ctx context.Context, key string) (shared.Vector, bool, error)
	Set(ctx context.Context, key string, vec shared.Vector, ttl time.Duration) error
}
