package bootstrap

import (
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
)
