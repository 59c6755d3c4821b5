package hold

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrExpired        = errors.New("hold has expired")
	ErrInvalidHoldTTL = errors.New("hold TTL must be positive")
)

// DefaultTTL is the window a reserved ticket is kept out of the pool
// before it becomes eligible for release.
const DefaultTTL = 5 * time.Minute

// InvalidTransitionError reports an attempt to finalize a hold that has
// already left the reserved state. It carries the current state so callers
// can surface it.
type InvalidTransitionError struct {
	From Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("hold is not reserved (current state: %s)", e.From)
}

// Hold is one holder's temporary or finalized claim on a single ticket.
// Transitions out of reserved happen exactly once; finalizedAt records when.
type Hold struct {
	id          uuid.UUID
	inventoryID uuid.UUID
	holderID    uuid.UUID
	status      Status
	expiresAt   time.Time
	finalizedAt *time.Time
	createdAt   time.Time
}

func NewHold(inventoryID, holderID uuid.UUID, now time.Time, ttl time.Duration) (*Hold, error) {
	if ttl <= 0 {
		return nil, ErrInvalidHoldTTL
	}

	return &Hold{
		id:          uuid.New(),
		inventoryID: inventoryID,
		holderID:    holderID,
		status:      StatusReserved,
		expiresAt:   now.Add(ttl),
		createdAt:   now,
	}, nil
}

func ReconstructHold(
	id, inventoryID, holderID uuid.UUID,
	status Status,
	expiresAt time.Time,
	finalizedAt *time.Time,
	createdAt time.Time,
) *Hold {
	return &Hold{
		id:          id,
		inventoryID: inventoryID,
		holderID:    holderID,
		status:      status,
		expiresAt:   expiresAt,
		finalizedAt: finalizedAt,
		createdAt:   createdAt,
	}
}

// IsLive reports whether the hold still removes a ticket from the pool:
// reserved and not past its TTL. Expiry is a derived, time-based fact, so
// a reserved hold past expiresAt is not live even before the sweeper runs.
func (h *Hold) IsLive(now time.Time) bool {
	return h.status == StatusReserved && now.Before(h.expiresAt)
}

func (h *Hold) HasExpired(now time.Time) bool {
	return !now.Before(h.expiresAt)
}

func (h *Hold) IsOwnedBy(holderID uuid.UUID) bool {
	return h.holderID == holderID
}

// Purchase finalizes the hold as purchased. The TTL is checked here as well,
// not only in the sweeper: a lapsed hold must never be purchasable.
func (h *Hold) Purchase(now time.Time) error {
	if h.status != StatusReserved {
		return &InvalidTransitionError{From: h.status}
	}
	if h.HasExpired(now) {
		return ErrExpired
	}

	h.status = StatusPurchased
	h.finalizedAt = &now
	return nil
}

// Cancel finalizes the hold as cancelled, returning its ticket to the pool.
func (h *Hold) Cancel(now time.Time) error {
	if h.status != StatusReserved {
		return &InvalidTransitionError{From: h.status}
	}

	h.status = StatusCancelled
	h.finalizedAt = &now
	return nil
}

// Expire finalizes the hold as expired. Callers select the expired set;
// the entity only guards the exactly-once transition.
func (h *Hold) Expire(now time.Time) error {
	if h.status != StatusReserved {
		return &InvalidTransitionError{From: h.status}
	}

	h.status = StatusExpired
	h.finalizedAt = &now
	return nil
}

func (h *Hold) ID() uuid.UUID           { return h.id }
func (h *Hold) InventoryID() uuid.UUID  { return h.inventoryID }
func (h *Hold) HolderID() uuid.UUID     { return h.holderID }
func (h *Hold) Status() Status          { return h.status }
func (h *Hold) ExpiresAt() time.Time    { return h.expiresAt }
func (h *Hold) FinalizedAt() *time.Time { return h.finalizedAt }
func (h *Hold) CreatedAt() time.Time    { return h.createdAt }
