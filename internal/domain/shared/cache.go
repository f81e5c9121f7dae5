package shared

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with per-entry TTL
type Cache interface {
	// Get returns the cached value and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}
