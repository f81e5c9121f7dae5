package cache

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore implements IdempotencyStore using an in-memory map.
// It only deduplicates within a single process.
type InMemoryIdempotencyStore struct {
	m *ttlMap
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store
// and starts its expiry sweeper
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{m: newTTLMap(5 * time.Minute)}
}

// MarkProcessed returns true if the key was newly marked
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return s.m.setNX(key, nil, ttl), nil
}

// IsProcessed checks if a key has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	_, ok := s.m.get(key)
	return ok, nil
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.m.close()
	return nil
}

// Size returns the number of entries in the store
func (s *InMemoryIdempotencyStore) Size() int {
	return s.m.size()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
