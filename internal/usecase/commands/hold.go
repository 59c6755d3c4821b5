package commands

import (
	"context"
	"errors"
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/hold"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/inventory"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/clock"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/errs"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/shared"

	"github.com/google/uuid"
)

// ReservationCommands is the reservation engine: every operation is one
// atomic transaction against the store. Capacity on an inventory is
// serialized by the exclusive lock on its row; holds are finalized exactly
// once.
type ReservationCommands interface {
	Reserve(ctx context.Context, inventoryID, holderID uuid.UUID) (*queries.HoldView, error)
	Purchase(ctx context.Context, holdID, holderID uuid.UUID) (*queries.HoldView, error)
	Cancel(ctx context.Context, holdID, holderID uuid.UUID) (*queries.HoldView, error)
	ReleaseExpired(ctx context.Context, inventoryID uuid.UUID) (int, error)
}

type reservationCommandsImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	holdTTL time.Duration
}

func NewReservationCommands(uow shared.UnitOfWork, clock clock.Clock, holdTTL time.Duration) ReservationCommands {
	if holdTTL <= 0 {
		holdTTL = hold.DefaultTTL
	}
	return &reservationCommandsImpl{
		uow:     uow,
		clock:   clock,
		holdTTL: holdTTL,
	}
}

// Reserve grants the holder a hold on one ticket, decrementing available
// capacity. Re-reserving while a live hold exists is idempotent and returns
// that hold without a second decrement. Lapsed holds on the inventory are
// reclaimed first, inside the same transaction, so capacity that only looks
// exhausted does not fail the availability check.
func (c *reservationCommandsImpl) Reserve(ctx context.Context, inventoryID, holderID uuid.UUID) (*queries.HoldView, error) {
	now := c.clock.Now()
	var view *queries.HoldView

	err := c.inTx(ctx, func(ctx context.Context, tx shared.Tx) error {
		inv, err := tx.Inventories().FindForUpdate(ctx, inventoryID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrInventoryNotFound)
			}
			return markStoreErr(err)
		}

		if _, err := c.releaseExpiredLocked(ctx, tx, inv, now); err != nil {
			return err
		}

		existing, err := tx.Holds().FindLive(ctx, inventoryID, holderID, now)
		if err != nil {
			return markStoreErr(err)
		}
		if existing != nil {
			view = toHoldView(existing)
			return nil
		}

		if err := inv.Reserve(); err != nil {
			if errors.Is(err, inventory.ErrSoldOut) {
				return errs.Mark(err, errs.ErrInventoryExhausted)
			}
			return err
		}

		newHold, err := hold.NewHold(inventoryID, holderID, now, c.holdTTL)
		if err != nil {
			return err
		}

		if err := tx.Inventories().Decrement(ctx, inventoryID); err != nil {
			return markStoreErr(err)
		}
		if err := tx.Holds().Create(ctx, newHold); err != nil {
			return markStoreErr(err)
		}

		view = toHoldView(newHold)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// Purchase finalizes a reserved hold as purchased. The ticket stays out of
// the pool permanently: available is not touched.
func (c *reservationCommandsImpl) Purchase(ctx context.Context, holdID, holderID uuid.UUID) (*queries.HoldView, error) {
	now := c.clock.Now()
	var view *queries.HoldView

	err := c.inTx(ctx, func(ctx context.Context, tx shared.Tx) error {
		h, err := c.findOwnedForUpdate(ctx, tx, holdID, holderID)
		if err != nil {
			return err
		}

		if err := h.Purchase(now); err != nil {
			return markTransitionErr(err)
		}

		if err := tx.Holds().Finalize(ctx, h); err != nil {
			return markStoreErr(err)
		}

		view = toHoldView(h)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// Cancel finalizes a reserved hold as cancelled and returns its ticket to
// the pool within the same transaction.
func (c *reservationCommandsImpl) Cancel(ctx context.Context, holdID, holderID uuid.UUID) (*queries.HoldView, error) {
	now := c.clock.Now()
	var view *queries.HoldView

	err := c.inTx(ctx, func(ctx context.Context, tx shared.Tx) error {
		h, err := c.findOwnedForUpdate(ctx, tx, holdID, holderID)
		if err != nil {
			return err
		}

		if err := h.Cancel(now); err != nil {
			return markTransitionErr(err)
		}

		if err := tx.Holds().Finalize(ctx, h); err != nil {
			return markStoreErr(err)
		}
		if err := tx.Inventories().Increment(ctx, h.InventoryID(), 1); err != nil {
			return markStoreErr(err)
		}

		view = toHoldView(h)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// ReleaseExpired sweeps the inventory's lapsed holds back into the pool and
// returns how many were released. The sweeper and the opportunistic path in
// Reserve share this exact code path.
func (c *reservationCommandsImpl) ReleaseExpired(ctx context.Context, inventoryID uuid.UUID) (int, error) {
	now := c.clock.Now()
	var released int

	err := c.inTx(ctx, func(ctx context.Context, tx shared.Tx) error {
		inv, err := tx.Inventories().FindForUpdate(ctx, inventoryID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrInventoryNotFound)
			}
			return markStoreErr(err)
		}

		released, err = c.releaseExpiredLocked(ctx, tx, inv, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	return released, nil
}

// releaseExpiredLocked expires every lapsed reserved hold on the inventory
// and credits the capacity back, one increment per hold, batched into the
// caller's transaction. The inventory row must already be locked.
func (c *reservationCommandsImpl) releaseExpiredLocked(ctx context.Context, tx shared.Tx, inv *inventory.Inventory, now time.Time) (int, error) {
	expired, err := tx.Holds().FindExpiredForUpdate(ctx, inv.ID(), now)
	if err != nil {
		return 0, markStoreErr(err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(expired))
	for _, h := range expired {
		if err := h.Expire(now); err != nil {
			return 0, markTransitionErr(err)
		}
		ids = append(ids, h.ID())
	}

	if err := inv.Release(int32(len(ids))); err != nil {
		return 0, err
	}

	if err := tx.Holds().ExpireBatch(ctx, ids, now); err != nil {
		return 0, markStoreErr(err)
	}
	if err := tx.Inventories().Increment(ctx, inv.ID(), int32(len(ids))); err != nil {
		return 0, markStoreErr(err)
	}

	return len(ids), nil
}

func (c *reservationCommandsImpl) findOwnedForUpdate(ctx context.Context, tx shared.Tx, holdID, holderID uuid.UUID) (*hold.Hold, error) {
	h, err := tx.Holds().FindForUpdate(ctx, holdID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrHoldNotFound)
		}
		return nil, markStoreErr(err)
	}
	if !h.IsOwnedBy(holderID) {
		return nil, errs.ErrUnauthorizedHolder
	}
	return h, nil
}

func (c *reservationCommandsImpl) inTx(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	err := c.uow.Within(ctx, fn)
	if err == nil {
		return nil
	}
	if infra.IsKind(err, infra.KindTransient) {
		return errs.Mark(err, errs.ErrStoreContention)
	}
	return err
}

func markTransitionErr(err error) error {
	var transitionErr *hold.InvalidTransitionError
	switch {
	case errors.As(err, &transitionErr):
		return errs.Mark(err, errs.ErrInvalidTransition)
	case errors.Is(err, hold.ErrExpired):
		return errs.Mark(err, errs.ErrHoldExpired)
	default:
		return err
	}
}

func markStoreErr(err error) error {
	if infra.IsKind(err, infra.KindTransient) {
		return errs.Mark(err, errs.ErrStoreContention)
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}

func toHoldView(h *hold.Hold) *queries.HoldView {
	return &queries.HoldView{
		ID:          h.ID(),
		InventoryID: h.InventoryID(),
		HolderID:    h.HolderID(),
		State:       h.Status().String(),
		ExpiresAt:   h.ExpiresAt(),
		FinalizedAt: h.FinalizedAt(),
		CreatedAt:   h.CreatedAt(),
	}
}
