package uow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/db"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/repository"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// Within runs fn in a ReadCommitted transaction. Serialization comes from
// the FOR UPDATE row locks the repositories take, not from the isolation
// level. There is deliberately no retry loop here: lock-wait timeouts and
// deadlock aborts surface as TRANSIENT repository errors and retry policy
// stays with the caller.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return infra.WrapRepoErr("failed to begin transaction", err)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, &pgTx{dbtx: pgxTx}); err != nil {
		return err
	}

	if err := pgxTx.Commit(ctx); err != nil {
		return infra.WrapRepoErr("failed to commit transaction", err)
	}

	return nil
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	inventoryRepo shared.InventoryRepository
	holdRepo      shared.HoldRepository
}

func (t *pgTx) Inventories() shared.InventoryRepository {
	if t.inventoryRepo == nil {
		t.inventoryRepo = repository.NewInventoryRepository(t.dbtx)
	}
	return t.inventoryRepo
}

func (t *pgTx) Holds() shared.HoldRepository {
	if t.holdRepo == nil {
		t.holdRepo = repository.NewHoldRepository(t.dbtx)
	}
	return t.holdRepo
}
