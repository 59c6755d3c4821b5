package components

import (
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/db"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/readstore"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/uow"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		// UnitOfWork builds its repositories per transaction, so only the
		// read side is wired here.
		uow.NewPostgresUoW,
		fx.Annotate(
			readstore.NewHoldReadStore,
			fx.As(new(queries.HoldReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
