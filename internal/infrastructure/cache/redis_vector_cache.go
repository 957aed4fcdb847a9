package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// RedisVectorCache implements VectorCache using Redis. This is suitable
// for deployments where multiple instances share the embedding cache.
type RedisVectorCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisVectorCache creates a new Redis-backed vector cache
func NewRedisVectorCache(cfg RedisConfig) (*RedisVectorCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisVectorCache{
		client:    client,
		keyPrefix: "embedding:vector:",
	}, nil
}

// NewRedisVectorCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisVectorCacheWithClient(client *redis.Client, keyPrefix string) *RedisVectorCache {
	if keyPrefix == "" {
		keyPrefix = "embedding:vector:"
	}
	return &RedisVectorCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached vector and true, or nil and false on a miss
func (c *RedisVectorCache) Get(ctx context.Context, key string) (shared.Vector, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached vector: %w", err)
	}

	var vec shared.Vector
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached vector: %w", err)
	}
	return vec, true, nil
}

// Set stores the vector with the given TTL
func (c *RedisVectorCache) Set(ctx context.Context, key string, vec shared.Vector, ttl time.Duration) error {
	raw, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache vector: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisVectorCache) Close() error {
	return c.client.Close()
}

// Ensure RedisVectorCache implements VectorCache
var _ VectorCache = (*RedisVectorCache)(nil)
