package components

import (
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/clock"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/config"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/commands"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
	usecaseValidatorsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewReservationCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewHoldQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewReservationCommands(uow shared.UnitOfWork, clk clock.Clock, cfg config.Config) commands.ReservationCommands {
	return commands.NewReservationCommands(uow, clk, cfg.Hold.TTL)
}
