package bootstrap

import (
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/metrics"

	"go.uber.org/fx"
)

var MetricsModule = fx.Module("metrics",
	fx.Provide(
		metrics.New,
	),
)
