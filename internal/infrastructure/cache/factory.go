package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pricewatch/backend/internal/infrastructure/config"
)

// VectorCacheFactory creates vector caches based on configuration
type VectorCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// VectorCacheFactoryOption is a functional option for configuring the factory
type VectorCacheFactoryOption func(*VectorCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) VectorCacheFactoryOption {
	return func(f *VectorCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) VectorCacheFactoryOption {
	return func(f *VectorCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewVectorCacheFactory creates a new factory
func NewVectorCacheFactory(cfg config.RedisConfig, opts ...VectorCacheFactoryOption) *VectorCacheFactory {
	f := &VectorCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed vector cache
func (f *VectorCacheFactory) CreateRedisCache() (VectorCache, error) {
	cache, err := NewRedisVectorCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis vector cache: %w", err)
	}
	return cache, nil
}

// CreateInMemoryCache creates an in-memory vector cache.
// In-memory caches do not share state across process instances, so each
// instance pays for its own embedding API calls.
func (f *VectorCacheFactory) CreateInMemoryCache() VectorCache {
	return NewInMemoryVectorCache()
}

// CreateCache creates a vector cache based on whether Redis is configured
// and reachable, falling back to in-memory when allowed.
func (f *VectorCacheFactory) CreateCache() (VectorCache, error) {
	if f.redisConfig.Host == "" {
		f.logger.Info("Redis not configured, using in-memory vector cache")
		return f.CreateInMemoryCache(), nil
	}

	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis vector cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for vector cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory vector cache",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
