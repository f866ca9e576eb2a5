package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/infra/repository"
	"service-marketplace/internal/pkg/clock"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type NotificationStore interface {
	Insert(ctx context.Context, n repository.Notification) (bool, error)
}

type IdempotencyPurger interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// NotificationHandler stores one notification per recipient of a booking event.
// Redelivered tasks are absorbed by the unique key on notifications.
type NotificationHandler struct {
	store  NotificationStore
	logger *zap.Logger
}

func NewNotificationHandler(store NotificationStore, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{store: store, logger: logger}
}

func (h *NotificationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var event booking.Event
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("invalid booking event payload: %v: %w", err, asynq.SkipRetry)
	}

	for _, recipient := range event.Recipients {
		inserted, err := h.store.Insert(ctx, repository.Notification{
			BookingID:   event.BookingID,
			RecipientID: recipient,
			Type:        event.Type.String(),
			Payload:     t.Payload(),
			OccurredAt:  event.OccurredAt,
		})
		if err != nil {
			return fmt.Errorf("failed to store notification for %s: %w", recipient, err)
		}
		if !inserted {
			h.logger.Debug("notification already delivered",
				zap.Stringer("booking_id", event.BookingID),
				zap.Stringer("recipient_id", recipient),
				zap.String("type", event.Type.String()),
			)
		}
	}
	return nil
}

type PurgeHandler struct {
	purger IdempotencyPurger
	clock  clock.Clock
	logger *zap.Logger
}

func NewPurgeHandler(purger IdempotencyPurger, clk clock.Clock, logger *zap.Logger) *PurgeHandler {
	return &PurgeHandler{purger: purger, clock: clk, logger: logger}
}

func (h *PurgeHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	n, err := h.purger.DeleteExpired(ctx, h.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to purge idempotency keys: %w", err)
	}
	h.logger.Info("purged expired idempotency keys", zap.Int64("deleted", n))
	return nil
}

func NewServeMux(notify *NotificationHandler, purge *PurgeHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeBookingNotify, notify)
	mux.Handle(TypePurgeIdempotency, purge)
	return mux
}

type WorkerConfig struct {
	Concurrency   int
	PurgeCronSpec string
}

// Worker runs the task server and the periodic maintenance scheduler.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	cronSpec  string
}

func NewWorker(redisOpt asynq.RedisConnOpt, cfg WorkerConfig, mux *asynq.ServeMux, logger *zap.Logger) *Worker {
	sugar := logger.Sugar()
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueNotifications: 6,
			QueueMaintenance:   1,
		},
		Logger: sugar,
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger:   sugar,
		Location: time.UTC,
	})
	spec := cfg.PurgeCronSpec
	if spec == "" {
		spec = "@hourly"
	}
	return &Worker{server: server, scheduler: scheduler, mux: mux, cronSpec: spec}
}

func (w *Worker) Start() error {
	if _, err := w.scheduler.Register(w.cronSpec, NewPurgeIdempotencyTask(), asynq.Queue(QueueMaintenance)); err != nil {
		return fmt.Errorf("failed to register purge task: %w", err)
	}
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}
	if err := w.scheduler.Start(); err != nil {
		w.server.Shutdown()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}
