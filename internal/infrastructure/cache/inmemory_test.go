package cache

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new key as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt_1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("returns false for already processed key", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt_2", time.Hour)
		require.NoError(t, err)

		isNew, err := store.MarkProcessed(ctx, "evt_2", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)

		processed, err := store.IsProcessed(ctx, "evt_2")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("allows reprocessing after expiration", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "evt_3", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "evt_3")
		require.NoError(t, err)
		assert.False(t, processed)

		isNew, err := store.MarkProcessed(ctx, "evt_3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const workers = 100
	results := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		go func() {
			isNew, err := store.MarkProcessed(ctx, "evt_concurrent", time.Hour)
			results <- err == nil && isNew
		}()
	}

	newCount := 0
	for i := 0; i < workers; i++ {
		if <-results {
			newCount++
		}
	}
	assert.Equal(t, 1, newCount, "exactly one goroutine should mark as new")
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestTTLMap_Sweep(t *testing.T) {
	m := newTTLMap(time.Hour)
	defer m.close()

	m.set("short", []byte("a"), 10*time.Millisecond)
	m.set("long", []byte("b"), time.Hour)
	m.set("forever", []byte("c"), 0)
	assert.Equal(t, 3, m.size())

	time.Sleep(20 * time.Millisecond)
	m.sweep()

	assert.Equal(t, 2, m.size())
	_, ok := m.get("forever")
	assert.True(t, ok)
}

func TestInMemoryCache(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()
	ctx := context.Background()

	_, found, err := c.Get(ctx, "shipping:de:1000")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "shipping:de:1000", []byte(`[{"id":8}]`), time.Minute))
	v, found, err := c.Get(ctx, "shipping:de:1000")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":8}]`, string(v))

	require.NoError(t, c.Delete(ctx, "shipping:de:1000"))
	_, found, _ = c.Get(ctx, "shipping:de:1000")
	assert.False(t, found)
}

func TestFactory_RedisDisabled(t *testing.T) {
	defer goleak.VerifyNone(t)
	stores, err := NewFactory(config.RedisConfig{Enabled: false}).Create(context.Background())
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, stores.Idempotency)
	assert.IsType(t, &InMemoryCache{}, stores.Cache)
}

func TestFactory_FallbackWhenUnreachable(t *testing.T) {
	cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	stores, err := NewFactory(cfg).Create(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &InMemoryCache{}, stores.Cache)
	require.NoError(t, stores.Close())

	_, err = NewFactory(cfg, WithInMemoryFallback(false)).Create(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis required")
}
