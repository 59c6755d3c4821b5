package components

import (
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/handler"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/api"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewHoldHandler,
		api.NewInventoryHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
