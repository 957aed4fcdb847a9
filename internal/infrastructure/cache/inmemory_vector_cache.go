package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// InMemoryVectorCache implements VectorCache with a process-local map.
// Suitable for single-instance deployments and testing.
type InMemoryVectorCache struct {
	mu      sync.RWMutex
	entries map[string]memoryVectorEntry
}

type memoryVectorEntry struct {
	vec       shared.Vector
	expiresAt time.Time
}

// NewInMemoryVectorCache creates a new in-memory vector cache
func NewInMemoryVectorCache() *InMemoryVectorCache {
	return &InMemoryVectorCache{
		entries: make(map[string]memoryVectorEntry),
	}
}

// Get returns the cached vector and true, or nil and false on a miss
func (c *InMemoryVectorCache) Get(_ context.Context, key string) (shared.Vector, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.vec, true, nil
}

// Set stores the vector. A zero ttl means the entry never expires.
func (c *InMemoryVectorCache) Set(_ context.Context, key string, vec shared.Vector, ttl time.Duration) error {
	entry := memoryVectorEntry{vec: vec}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached entries, expired or not
func (c *InMemoryVectorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryVectorCache implements VectorCache
var _ VectorCache = (*InMemoryVectorCache)(nil)
