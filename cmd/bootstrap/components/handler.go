package components

import (
	"service-marketplace/internal/handler"
	"service-marketplace/internal/handler/api"
	"service-marketplace/internal/handler/middleware"
	"service-marketplace/internal/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewAvailabilityHandler,
		middleware.NewAuthMiddleware,
		func(cfg config.Config, logger *zap.Logger) *middleware.RateLimiter {
			return middleware.NewRateLimiter(cfg.RateLimit, logger)
		},
	),
	fx.Invoke(handler.NewRouter),
)
