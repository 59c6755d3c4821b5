package bootstrap

import (
	"context"
	"log/slog"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/config"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/metrics"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/commands"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewSweeper,
	),
	fx.Invoke(
		startSweeper,
	),
)

func NewSweeper(
	reservationCommands commands.ReservationCommands,
	holdQueries queries.HoldQueries,
	m *metrics.Metrics,
	cfg config.Config,
) *worker.Sweeper {
	return worker.NewSweeper(reservationCommands, holdQueries, m, cfg.Sweep.Interval)
}

func startSweeper(lc fx.Lifecycle, sweeper *worker.Sweeper, cfg config.Config) {
	if !cfg.Sweep.Enabled {
		slog.Info("スイーパーは無効化されています")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go sweeper.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}
