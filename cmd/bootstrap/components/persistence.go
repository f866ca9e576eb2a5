package components

import (
	"service-marketplace/internal/infra/cache"
	"service-marketplace/internal/infra/db"
	"service-marketplace/internal/infra/readstore"
	"service-marketplace/internal/infra/uow"
	"service-marketplace/internal/pkg/config"
	"service-marketplace/internal/pkg/metrics"
	"service-marketplace/internal/usecase/commands"
	"service-marketplace/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Booking
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		// Availability, read through the Redis cache
		readstore.NewAvailabilityReadStore,
		NewAvailabilityCache,
		fx.Annotate(
			func(c *cache.AvailabilityCache) *cache.AvailabilityCache { return c },
			fx.As(new(queries.AvailabilityReadStore)),
			fx.As(new(commands.AvailabilityCacheInvalidator)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// UnitOfWork binds the booking, availability and idempotency repositories per transaction
		uow.NewPostgresUoW,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewAvailabilityCache(store *readstore.AvailabilityReadStore, client redis.UniversalClient, cfg config.Config, logger *zap.Logger, m *metrics.Metrics) *cache.AvailabilityCache {
	return cache.NewAvailabilityCache(store, client, cfg.Cache.AvailabilityTTL, logger, m)
}
