// Command sweep releases expired holds from the command line. It shares
// the engine with the API server, so running it alongside a live server
// is safe: both paths serialize on the inventory row locks.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/db"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/readstore"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra/uow"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/clock"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/config"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/metrics"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/commands"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/worker"

	"github.com/spf13/pflag"
)

func main() {
	once := pflag.Bool("once", false, "run a single sweep and exit")
	interval := pflag.Duration("interval", 0, "override SWEEP_INTERVAL for periodic mode")
	pflag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("設定の読み込みに失敗しました", "error", err)
		os.Exit(1)
	}

	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		slog.Error("データベースへの接続に失敗しました", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	clk := clock.NewRealClock()
	reservationCommands := commands.NewReservationCommands(uow.NewPostgresUoW(pool), clk, cfg.Hold.TTL)
	holdQueries := queries.NewHoldQueries(readstore.NewHoldReadStore(pool), clk)

	sweepInterval := cfg.Sweep.Interval
	if *interval > 0 {
		sweepInterval = *interval
	}

	sweeper := worker.NewSweeper(reservationCommands, holdQueries, metrics.New(), sweepInterval)

	if *once {
		runOnce(sweeper)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sweeper.Start(ctx)
}

func runOnce(sweeper *worker.Sweeper) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	released, err := sweeper.RunOnce(ctx)
	if err != nil {
		slog.Error("スイープの実行に失敗しました", "error", err)
		os.Exit(1)
	}

	slog.Info("スイープが完了しました", "released", released)
}
