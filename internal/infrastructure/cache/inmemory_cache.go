package cache

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// InMemoryCache implements shared.Cache for single-instance deployments and tests
type InMemoryCache struct {
	m *ttlMap
}

// NewInMemoryCache creates an in-memory cache
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{m: newTTLMap(time.Minute)}
}

func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.m.get(key)
	return v, ok, nil
}

func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.m.set(key, value, ttl)
	return nil
}

func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.m.delete(key)
	return nil
}

// Close stops the sweeper
func (c *InMemoryCache) Close() error {
	c.m.close()
	return nil
}

var _ shared.Cache = (*InMemoryCache)(nil)
