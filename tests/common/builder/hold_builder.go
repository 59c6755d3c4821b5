//go:build unit || e2e

package builder

import (
	"time"

	domhold "github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/hold"
	reqdto "github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/dto/request"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"

	"github.com/google/uuid"
)

type HoldBuilder struct {
	ID          uuid.UUID
	InventoryID uuid.UUID
	HolderID    uuid.UUID
	Status      domhold.Status
	TTL         time.Duration
	Now         time.Time
	FinalizedAt *time.Time
}

func NewHoldBuilder() *HoldBuilder {
	return &HoldBuilder{
		ID:          uuid.New(),
		InventoryID: uuid.New(),
		HolderID:    uuid.New(),
		Status:      domhold.StatusReserved,
		TTL:         domhold.DefaultTTL,
		Now:         time.Now(),
	}
}

func (b *HoldBuilder) With(mutate func(*HoldBuilder)) *HoldBuilder {
	mutate(b)
	return b
}

// BuildDomain creates a fresh hold through the constructor; Status and
// FinalizedAt are ignored because new holds always start reserved.
func (b *HoldBuilder) BuildDomain() (*domhold.Hold, error) {
	return domhold.NewHold(b.InventoryID, b.HolderID, b.Now, b.TTL)
}

// BuildReconstructed rebuilds a hold as the repository layer would,
// honoring Status and FinalizedAt.
func (b *HoldBuilder) BuildReconstructed() *domhold.Hold {
	return domhold.ReconstructHold(
		b.ID, b.InventoryID, b.HolderID,
		b.Status,
		b.Now.Add(b.TTL),
		b.FinalizedAt,
		b.Now,
	)
}

func (b *HoldBuilder) BuildViewQuery() *queries.HoldView {
	return &queries.HoldView{
		ID:          b.ID,
		InventoryID: b.InventoryID,
		HolderID:    b.HolderID,
		State:       b.Status.String(),
		ExpiresAt:   b.Now.Add(b.TTL),
		FinalizedAt: b.FinalizedAt,
		CreatedAt:   b.Now,
	}
}

func (b *HoldBuilder) BuildCreateRequestDTO() reqdto.CreateHoldRequest {
	return reqdto.CreateHoldRequest{
		InventoryID: b.InventoryID,
	}
}

func (b *HoldBuilder) WithInventoryID(id uuid.UUID) *HoldBuilder {
	b.InventoryID = id
	return b
}

func (b *HoldBuilder) WithHolderID(id uuid.UUID) *HoldBuilder {
	b.HolderID = id
	return b
}

func (b *HoldBuilder) WithStatus(status domhold.Status) *HoldBuilder {
	b.Status = status
	return b
}

func (b *HoldBuilder) WithTTL(ttl time.Duration) *HoldBuilder {
	b.TTL = ttl
	return b
}

func (b *HoldBuilder) WithNow(now time.Time) *HoldBuilder {
	b.Now = now
	return b
}

func (b *HoldBuilder) AsFinalized(status domhold.Status, at time.Time) *HoldBuilder {
	b.Status = status
	b.FinalizedAt = &at
	return b
}
