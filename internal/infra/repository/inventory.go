package repository

import (
	"context"
	"errors"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/inventory"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(dbtx db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: dbtx}
}

// FindForUpdate blocks behind any concurrent transaction holding the row
// until that transaction commits or rolls back.
func (r *InventoryRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Inventory, error) {
	const query = `SELECT id, total, available FROM inventories WHERE id = $1 FOR UPDATE`

	var (
		invID     uuid.UUID
		total     int32
		available int32
	)
	if err := r.db.QueryRow(ctx, query, id).Scan(&invID, &total, &available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("inventory not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock inventory", err)
	}

	return inventory.ReconstructInventory(invID, total, available), nil
}

func (r *InventoryRepository) Decrement(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE inventories SET available = available - 1, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return infra.WrapRepoErr("failed to decrement inventory", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("inventory not found", pgx.ErrNoRows, infra.KindNotFound)
	}

	return nil
}

func (r *InventoryRepository) Increment(ctx context.Context, id uuid.UUID, n int32) error {
	const query = `UPDATE inventories SET available = available + $2, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, n)
	if err != nil {
		return infra.WrapRepoErr("failed to increment inventory", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("inventory not found", pgx.ErrNoRows, infra.KindNotFound)
	}

	return nil
}
