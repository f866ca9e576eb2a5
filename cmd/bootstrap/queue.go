package bootstrap

import (
	"context"

	"service-marketplace/internal/infra/queue"
	"service-marketplace/internal/infra/repository"
	"service-marketplace/internal/pkg/clock"
	"service-marketplace/internal/pkg/config"
	"service-marketplace/internal/usecase"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var QueueModule = fx.Module("queue",
	fx.Provide(
		NewEventPublisher,
	),
	fx.Invoke(StartWorker),
)

func redisConnOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.QueueDB,
	}
}

// NewEventPublisher enqueues booking events on asynq, or only logs them when Redis is not configured.
func NewEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) usecase.EventPublisher {
	if !cfg.Redis.Enabled() {
		logger.Info("redis not configured, booking events are logged only")
		return queue.NewLogPublisher(logger)
	}

	client := asynq.NewClient(redisConnOpt(cfg))
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return queue.NewAsynqPublisher(client, cfg.Queue.MaxRetry, cfg.Queue.EnqueueTimeout)
}

func StartWorker(lc fx.Lifecycle, cfg config.Config, pool *pgxpool.Pool, clk clock.Clock, logger *zap.Logger) {
	if !cfg.Redis.Enabled() || !cfg.Queue.WorkerEnabled {
		return
	}

	mux := queue.NewServeMux(
		queue.NewNotificationHandler(repository.NewNotificationRepository(pool), logger),
		queue.NewPurgeHandler(repository.NewIdempotencyRepository(pool, clk), clk, logger),
	)
	worker := queue.NewWorker(redisConnOpt(cfg), queue.WorkerConfig{
		Concurrency:   cfg.Queue.Concurrency,
		PurgeCronSpec: cfg.Queue.PurgeCron,
	}, mux, logger)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return worker.Start()
		},
		OnStop: func(_ context.Context) error {
			worker.Shutdown()
			return nil
		},
	})
}
