//go:build unit || e2e

package builder

import (
	dominventory "github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/inventory"

	"github.com/google/uuid"
)

type InventoryBuilder struct {
	ID        uuid.UUID
	Total     int32
	Available int32
}

func NewInventoryBuilder() *InventoryBuilder {
	return &InventoryBuilder{
		ID:        uuid.New(),
		Total:     10,
		Available: 10,
	}
}

func (b *InventoryBuilder) With(mutate func(*InventoryBuilder)) *InventoryBuilder {
	mutate(b)
	return b
}

func (b *InventoryBuilder) BuildDomain() *dominventory.Inventory {
	return dominventory.ReconstructInventory(b.ID, b.Total, b.Available)
}

func (b *InventoryBuilder) WithCapacity(total, available int32) *InventoryBuilder {
	b.Total = total
	b.Available = available
	return b
}

func (b *InventoryBuilder) AsSoldOut() *InventoryBuilder {
	b.Available = 0
	return b
}
