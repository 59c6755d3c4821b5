package queries

import (
	"context"
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/clock"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/errs"

	"github.com/google/uuid"
)

// HoldView is the read model returned to callers. State reflects what is
// persisted; a reserved hold past its TTL keeps state "reserved" here until
// the sweeper (or an opportunistic release) finalizes it.
type HoldView struct {
	ID          uuid.UUID  `json:"id"`
	InventoryID uuid.UUID  `json:"inventory_id"`
	HolderID    uuid.UUID  `json:"holder_id"`
	State       string     `json:"state"`
	ExpiresAt   time.Time  `json:"expires_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type HoldQueries interface {
	GetByID(ctx context.Context, holderID, id uuid.UUID) (*HoldView, error)
	ListByHolder(ctx context.Context, holderID uuid.UUID) ([]*HoldView, error)
	InventoriesWithExpiredHolds(ctx context.Context) ([]uuid.UUID, error)
}

type HoldReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*HoldView, error)
	FindByHolderID(ctx context.Context, holderID uuid.UUID) ([]*HoldView, error)
	FindInventoriesWithExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type holdQueriesImpl struct {
	store HoldReadStore
	clock clock.Clock
}

func NewHoldQueries(store HoldReadStore, clock clock.Clock) HoldQueries {
	return &holdQueriesImpl{store: store, clock: clock}
}

// GetByID hides holds of other holders behind not-found rather than
// acknowledging their existence.
func (q *holdQueriesImpl) GetByID(ctx context.Context, holderID, id uuid.UUID) (*HoldView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.HolderID != holderID {
		return nil, errs.ErrHoldNotFound
	}
	return view, nil
}

func (q *holdQueriesImpl) ListByHolder(ctx context.Context, holderID uuid.UUID) ([]*HoldView, error) {
	return q.store.FindByHolderID(ctx, holderID)
}

func (q *holdQueriesImpl) InventoriesWithExpiredHolds(ctx context.Context) ([]uuid.UUID, error) {
	return q.store.FindInventoriesWithExpired(ctx, q.clock.Now())
}
