package readstore

import (
	"context"
	"errors"
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/db"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/errs"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type HoldReadStore struct {
	db db.DBTX
}

func NewHoldReadStore(dbtx db.DBTX) *HoldReadStore {
	return &HoldReadStore{db: dbtx}
}

func (r *HoldReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.HoldView, error) {
	const query = `
		SELECT id, inventory_id, holder_id, state, expires_at, finalized_at, created_at
		FROM holds
		WHERE id = $1`

	view, err := scanHoldView(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.Mark(
				infra.WrapRepoErr("hold not found", err, infra.KindNotFound),
				errs.ErrHoldNotFound,
			)
		}
		return nil, infra.WrapRepoErr("failed to find hold by ID", err)
	}

	return view, nil
}

func (r *HoldReadStore) FindByHolderID(ctx context.Context, holderID uuid.UUID) ([]*queries.HoldView, error) {
	const query = `
		SELECT id, inventory_id, holder_id, state, expires_at, finalized_at, created_at
		FROM holds
		WHERE holder_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, holderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find holds by holder", err)
	}
	defer rows.Close()

	views := []*queries.HoldView{}
	for rows.Next() {
		view, err := scanHoldView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan hold row", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate hold rows", err)
	}

	return views, nil
}

func (r *HoldReadStore) FindInventoriesWithExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	const query = `
		SELECT DISTINCT inventory_id
		FROM holds
		WHERE state = 'reserved' AND expires_at <= $1`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find inventories with expired holds", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan inventory ID", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate inventory IDs", err)
	}

	return ids, nil
}

func scanHoldView(row pgx.Row) (*queries.HoldView, error) {
	var view queries.HoldView
	if err := row.Scan(
		&view.ID, &view.InventoryID, &view.HolderID, &view.State,
		&view.ExpiresAt, &view.FinalizedAt, &view.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &view, nil
}
