package wishlist

import (
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	a, b, c, d, gone := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()
	exists := func(id uuid.UUID) bool { return id != gone }

	t.Run("server wins and local backfills in order", func(t *testing.T) {
		res := Reconcile([]uuid.UUID{a, b}, []uuid.UUID{d, b, c, d, gone}, exists)
		assert.Equal(t, []uuid.UUID{a, b, d, c}, res.Merged)
		assert.Equal(t, []uuid.UUID{d, c}, res.Added)
		assert.Equal(t, []uuid.UUID{gone}, res.Skipped)
	})

	t.Run("empty local keeps server", func(t *testing.T) {
		res := Reconcile([]uuid.UUID{a}, nil, exists)
		assert.Equal(t, []uuid.UUID{a}, res.Merged)
		assert.Empty(t, res.Added)
		assert.Empty(t, res.Skipped)
	})

	t.Run("empty server adopts local", func(t *testing.T) {
		res := Reconcile(nil, []uuid.UUID{c, a}, nil)
		assert.Equal(t, []uuid.UUID{c, a}, res.Merged)
	})

	t.Run("skipped ids are reported once", func(t *testing.T) {
		res := Reconcile(nil, []uuid.UUID{gone, gone, uuid.Nil}, exists)
		assert.Equal(t, []uuid.UUID{gone}, res.Skipped)
		assert.Empty(t, res.Merged)
	})
}

func TestWishlist(t *testing.T) {
	w, err := NewWishlist(uuid.New())
	require.NoError(t, err)

	v := uuid.New()
	item, err := w.AddItem(v)
	require.NoError(t, err)

	_, err = w.AddItem(v)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	local := uuid.New()
	res := w.Merge([]uuid.UUID{v, local}, nil)
	assert.Equal(t, []uuid.UUID{local}, res.Added)
	assert.Equal(t, []uuid.UUID{v, local}, w.VariantIDs())

	require.NoError(t, w.RemoveItem(item.ID))
	assert.ErrorIs(t, w.RemoveItem(item.ID), shared.ErrNotFound)
	assert.Equal(t, []uuid.UUID{local}, w.VariantIDs())

	_, err = NewWishlist(uuid.Nil)
	assert.Error(t, err)
}
