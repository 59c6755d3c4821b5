package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/metrics"

	"github.com/google/uuid"
)

// ErrSweepInProgress is returned when a trigger arrives while a run is
// still active. Overlapping runs are skipped, never queued.
var ErrSweepInProgress = errors.New("sweep already in progress")

// ReservationReleaser is the engine operation the sweeper drives; the
// on-demand path in reserve uses the same operation.
type ReservationReleaser interface {
	ReleaseExpired(ctx context.Context, inventoryID uuid.UUID) (int, error)
}

type ExpiredInventoryFinder interface {
	InventoriesWithExpiredHolds(ctx context.Context) ([]uuid.UUID, error)
}

// Sweeper periodically releases lapsed holds back into their inventories.
// A failure on one inventory is logged and skipped; the remaining
// inventories are still processed and the next run picks up the leftovers.
type Sweeper struct {
	releaser ReservationReleaser
	finder   ExpiredInventoryFinder
	metrics  *metrics.Metrics
	interval time.Duration
	running  atomic.Bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewSweeper(
	releaser ReservationReleaser,
	finder ExpiredInventoryFinder,
	m *metrics.Metrics,
	interval time.Duration,
) *Sweeper {
	return &Sweeper{
		releaser: releaser,
		finder:   finder,
		metrics:  m,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start blocks, triggering RunOnce on every tick until the context is
// cancelled or Stop is called. Run it on its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("期限切れホールドのスイーパーを開始します", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			slog.Info("スイーパーを停止します", "reason", "context cancelled")
			return
		case <-s.stopCh:
			slog.Info("スイーパーを停止します", "reason", "stop requested")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// RunOnce executes a single sweep and returns the number of holds
// released. If a run is already active it returns ErrSweepInProgress
// without doing any work.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.metrics.SweepRunsTotal.WithLabelValues("skipped").Inc()
		return 0, ErrSweepInProgress
	}
	defer s.running.Store(false)

	inventoryIDs, err := s.finder.InventoriesWithExpiredHolds(ctx)
	if err != nil {
		s.metrics.SweepRunsTotal.WithLabelValues("failed").Inc()
		return 0, err
	}

	released := 0
	failed := 0
	for _, inventoryID := range inventoryIDs {
		count, err := s.releaser.ReleaseExpired(ctx, inventoryID)
		if err != nil {
			// Recoverable by the next scheduled run.
			failed++
			slog.Warn("failed to release expired holds for inventory",
				"inventory_id", inventoryID,
				"error", err.Error())
			continue
		}
		released += count
	}

	s.metrics.SweepRunsTotal.WithLabelValues("completed").Inc()
	s.metrics.SweepReleasedTotal.Add(float64(released))

	if released > 0 || failed > 0 {
		slog.Info("sweep completed",
			"inventories", len(inventoryIDs),
			"released", released,
			"failed", failed)
	}

	return released, nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	count, err := s.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			slog.Debug("sweep trigger skipped, previous run still active")
			return
		}
		slog.Error("sweep run failed", "error", err.Error())
		return
	}

	if count > 0 {
		slog.Info("期限切れホールドを解放しました", "count", count)
	}
}
