package shared

import (
	"context"
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/hold"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/inventory"

	"github.com/google/uuid"
)

// UnitOfWork runs fn inside one store transaction. Row locks taken through
// the repositories are held until fn returns and the transaction commits or
// rolls back; the engine never retries on its own (lock-wait timeouts and
// deadlock aborts surface to the caller as a transient repository error).
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Inventories() InventoryRepository
	Holds() HoldRepository
}

type InventoryRepository interface {
	// FindForUpdate loads the inventory row under an exclusive lock. This is
	// the single serialization point for capacity on one inventory.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Inventory, error)
	Decrement(ctx context.Context, id uuid.UUID) error
	Increment(ctx context.Context, id uuid.UUID, n int32) error
}

type HoldRepository interface {
	Create(ctx context.Context, h *hold.Hold) error
	// FindLive returns the holder's reserved, unexpired hold on the
	// inventory, or nil if there is none.
	FindLive(ctx context.Context, inventoryID, holderID uuid.UUID, now time.Time) (*hold.Hold, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error)
	// Finalize persists the state and finalized_at of a hold that just left
	// the reserved state.
	Finalize(ctx context.Context, h *hold.Hold) error
	FindExpiredForUpdate(ctx context.Context, inventoryID uuid.UUID, now time.Time) ([]*hold.Hold, error)
	ExpireBatch(ctx context.Context, ids []uuid.UUID, finalizedAt time.Time) error
}
