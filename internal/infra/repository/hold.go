package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/domain/hold"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type HoldRepository struct {
	db db.DBTX
}

func NewHoldRepository(dbtx db.DBTX) *HoldRepository {
	return &HoldRepository{db: dbtx}
}

func (r *HoldRepository) Create(ctx context.Context, h *hold.Hold) error {
	const query = `
		INSERT INTO holds (id, inventory_id, holder_id, state, expires_at, finalized_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		h.ID(), h.InventoryID(), h.HolderID(), h.Status().String(),
		h.ExpiresAt(), h.FinalizedAt(), h.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create hold", err)
	}

	return nil
}

// FindLive returns nil without error when the holder has no reserved,
// unexpired hold on the inventory.
func (r *HoldRepository) FindLive(ctx context.Context, inventoryID, holderID uuid.UUID, now time.Time) (*hold.Hold, error) {
	const query = `
		SELECT id, inventory_id, holder_id, state, expires_at, finalized_at, created_at
		FROM holds
		WHERE inventory_id = $1 AND holder_id = $2 AND state = 'reserved' AND expires_at > $3`

	h, err := r.scanHold(r.db.QueryRow(ctx, query, inventoryID, holderID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find live hold", err)
	}

	return h, nil
}

func (r *HoldRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error) {
	const query = `
		SELECT id, inventory_id, holder_id, state, expires_at, finalized_at, created_at
		FROM holds
		WHERE id = $1
		FOR UPDATE`

	h, err := r.scanHold(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("hold not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock hold", err)
	}

	return h, nil
}

func (r *HoldRepository) Finalize(ctx context.Context, h *hold.Hold) error {
	const query = `UPDATE holds SET state = $2, finalized_at = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, h.ID(), h.Status().String(), h.FinalizedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to finalize hold", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("hold not found", pgx.ErrNoRows, infra.KindNotFound)
	}

	return nil
}

// FindExpiredForUpdate locks every lapsed reserved hold of the inventory.
// Callers must already hold the inventory row lock so the batch cannot race
// a concurrent reserve. A hold is lapsed exactly at its deadline, matching
// Hold.HasExpired.
func (r *HoldRepository) FindExpiredForUpdate(ctx context.Context, inventoryID uuid.UUID, now time.Time) ([]*hold.Hold, error) {
	const query = `
		SELECT id, inventory_id, holder_id, state, expires_at, finalized_at, created_at
		FROM holds
		WHERE inventory_id = $1 AND state = 'reserved' AND expires_at <= $2
		ORDER BY created_at
		FOR UPDATE`

	rows, err := r.db.Query(ctx, query, inventoryID, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to select expired holds", err)
	}
	defer rows.Close()

	var holds []*hold.Hold
	for rows.Next() {
		h, err := r.scanHold(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan expired hold", err)
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate expired holds", err)
	}

	return holds, nil
}

func (r *HoldRepository) ExpireBatch(ctx context.Context, ids []uuid.UUID, finalizedAt time.Time) error {
	const query = `UPDATE holds SET state = 'expired', finalized_at = $2 WHERE id = ANY($1)`

	tag, err := r.db.Exec(ctx, query, ids, finalizedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to expire holds", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return infra.WrapRepoErr("expired hold batch mismatch", nil, infra.KindDBFailure)
	}

	return nil
}

func (r *HoldRepository) scanHold(row pgx.Row) (*hold.Hold, error) {
	var (
		id          uuid.UUID
		inventoryID uuid.UUID
		holderID    uuid.UUID
		state       string
		expiresAt   time.Time
		finalizedAt *time.Time
		createdAt   time.Time
	)
	if err := row.Scan(&id, &inventoryID, &holderID, &state, &expiresAt, &finalizedAt, &createdAt); err != nil {
		return nil, err
	}

	return hold.ReconstructHold(id, inventoryID, holderID, hold.Status(state), expiresAt, finalizedAt, createdAt), nil
}
