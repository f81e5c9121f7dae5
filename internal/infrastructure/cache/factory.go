package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores bundles the idempotency store and the general cache
type Stores struct {
	Idempotency shared.IdempotencyStore
	Cache       shared.Cache
	closers     []func() error
	client      *redis.Client
}

// Ping checks the Redis connection. In-memory stores are always reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// Close releases the stores and the Redis client, if any
func (s *Stores) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Factory creates the cache stores based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns Redis-backed stores when Redis is enabled and reachable,
// otherwise in-memory stores if fallback is allowed
func (f *Factory) Create(ctx context.Context) (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory cache and idempotency store")
		return f.inMemory(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis cache and idempotency store", zap.String("addr", f.redisConfig.Addr()))
		return f.fromClient(client), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Webhook deduplication is then per instance.",
		zap.Error(err),
	)
	return f.inMemory(), nil
}

func (f *Factory) fromClient(client *redis.Client) *Stores {
	return &Stores{
		Idempotency: NewRedisIdempotencyStore(client, DefaultIdempotencyPrefix),
		Cache:       NewRedisCache(client, DefaultCachePrefix),
		closers:     []func() error{client.Close},
		client:      client,
	}
}

func (f *Factory) inMemory() *Stores {
	idem := NewInMemoryIdempotencyStore()
	c := NewInMemoryCache()
	return &Stores{
		Idempotency: idem,
		Cache:       c,
		closers:     []func() error{idem.Close, c.Close},
	}
}
