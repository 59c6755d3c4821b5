package inventory

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrSoldOut         = errors.New("no tickets available")
	ErrInvalidCapacity = errors.New("capacity must be non-negative")
	ErrOverRelease     = errors.New("release would exceed total capacity")
)

// Inventory tracks the ticket pool for one event. total is fixed at
// creation; available is mutated only through the reservation engine,
// always inside the transaction that also touches the corresponding hold.
type Inventory struct {
	id        uuid.UUID
	total     int32
	available int32
}

func NewInventory(total int32) (*Inventory, error) {
	if total < 0 {
		return nil, ErrInvalidCapacity
	}
	return &Inventory{
		id:        uuid.New(),
		total:     total,
		available: total,
	}, nil
}

func ReconstructInventory(id uuid.UUID, total, available int32) *Inventory {
	return &Inventory{
		id:        id,
		total:     total,
		available: available,
	}
}

// Reserve takes one ticket out of the pool.
func (i *Inventory) Reserve() error {
	if i.available <= 0 {
		return ErrSoldOut
	}
	i.available--
	return nil
}

// Release returns n tickets to the pool. n corresponds to holds leaving
// the reserved state without a purchase, so it can never push available
// past total.
func (i *Inventory) Release(n int32) error {
	if n < 0 || i.available+n > i.total {
		return ErrOverRelease
	}
	i.available += n
	return nil
}

func (i *Inventory) IsSoldOut() bool {
	return i.available <= 0
}

func (i *Inventory) ID() uuid.UUID    { return i.id }
func (i *Inventory) Total() int32     { return i.total }
func (i *Inventory) Available() int32 { return i.available }
