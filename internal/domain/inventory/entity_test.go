//go:build unit

package inventory_test

import (
	"testing"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/inventory"
	"github.com/Holytear/concurrent-ticket-reservation-api/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInventory(t *testing.T) {
	t.Run("starts with full availability", func(t *testing.T) {
		inv, err := inventory.NewInventory(10)
		require.NoError(t, err)
		require.NotNil(t, inv)

		assert.NotEqual(t, uuid.Nil, inv.ID())
		assert.Equal(t, int32(10), inv.Total())
		assert.Equal(t, int32(10), inv.Available())
	})

	t.Run("zero capacity is a valid sold-out pool", func(t *testing.T) {
		inv, err := inventory.NewInventory(0)
		require.NoError(t, err)
		assert.True(t, inv.IsSoldOut())
	})

	t.Run("negative capacity", func(t *testing.T) {
		inv, err := inventory.NewInventory(-1)
		require.Nil(t, inv)
		require.ErrorIs(t, err, inventory.ErrInvalidCapacity)
	})
}

func TestReserve(t *testing.T) {
	t.Run("decrements until the pool is empty", func(t *testing.T) {
		inv := builder.NewInventoryBuilder().WithCapacity(3, 3).BuildDomain()

		for i := int32(2); i >= 0; i-- {
			require.NoError(t, inv.Reserve())
			assert.Equal(t, i, inv.Available())
		}

		require.ErrorIs(t, inv.Reserve(), inventory.ErrSoldOut)
		assert.Equal(t, int32(0), inv.Available())
	})

	t.Run("sold out from the start", func(t *testing.T) {
		inv := builder.NewInventoryBuilder().AsSoldOut().BuildDomain()
		require.ErrorIs(t, inv.Reserve(), inventory.ErrSoldOut)
	})
}

func TestRelease(t *testing.T) {
	t.Run("returns tickets to the pool", func(t *testing.T) {
		inv := builder.NewInventoryBuilder().WithCapacity(10, 4).BuildDomain()

		require.NoError(t, inv.Release(3))
		assert.Equal(t, int32(7), inv.Available())
	})

	t.Run("releasing zero is a no-op", func(t *testing.T) {
		inv := builder.NewInventoryBuilder().WithCapacity(10, 4).BuildDomain()

		require.NoError(t, inv.Release(0))
		assert.Equal(t, int32(4), inv.Available())
	})

	t.Run("cannot push available past total", func(t *testing.T) {
		inv := builder.NewInventoryBuilder().WithCapacity(10, 8).BuildDomain()

		require.ErrorIs(t, inv.Release(3), inventory.ErrOverRelease)
		assert.Equal(t, int32(8), inv.Available())
	})

	t.Run("negative release is rejected", func(t *testing.T) {
		inv := builder.NewInventoryBuilder().WithCapacity(10, 8).BuildDomain()
		require.ErrorIs(t, inv.Release(-1), inventory.ErrOverRelease)
	})
}
