package components

import (
	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/pkg/clock"
	"service-marketplace/internal/pkg/config"
	"service-marketplace/internal/pkg/metrics"
	"service-marketplace/internal/usecase"
	"service-marketplace/internal/usecase/commands"
	"service-marketplace/internal/usecase/queries"
	"service-marketplace/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewBookingPolicy,
	func(clock clock.Clock, policy booking.Policy) *booking.Services {
		return &booking.Services{
			Clock:  clock,
			Policy: policy,
		}
	},
	usecase.NewNotifier,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewBookingCommands,
		commands.NewAvailabilityCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewAvailabilityQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewBookingPolicy(cfg config.Config) booking.Policy {
	policy := booking.DefaultPolicy()
	policy.LeadTime = cfg.Booking.LeadTime
	policy.CancelNotice = cfg.Booking.CancelNotice
	policy.RescheduleNotice = cfg.Booking.RescheduleNotice
	if cfg.Booking.DefaultCurrency != "" {
		policy.DefaultCurrency = cfg.Booking.DefaultCurrency
	}
	return policy
}

func NewBookingCommands(uow shared.UnitOfWork, services *booking.Services, cfg config.Config, m *metrics.Metrics) commands.BookingCommands {
	return commands.NewBookingCommands(uow, services, cfg.Booking.IdempotencyTTL, m)
}
