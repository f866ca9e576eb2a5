package queue

import (
	"context"
	"time"

	"service-marketplace/internal/domain/booking"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqPublisher hands booking events to the notification worker through Redis.
type AsynqPublisher struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

func NewAsynqPublisher(client *asynq.Client, maxRetry int, timeout time.Duration) *AsynqPublisher {
	return &AsynqPublisher{client: client, maxRetry: maxRetry, timeout: timeout}
}

func (p *AsynqPublisher) Publish(ctx context.Context, event booking.Event) error {
	task, err := NewBookingNotifyTask(event)
	if err != nil {
		return err
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	_, err = p.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(p.maxRetry),
	)
	return err
}

// LogPublisher is used when Redis is not configured. Events are only logged.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event booking.Event) error {
	p.logger.Info("booking event",
		zap.String("type", event.Type.String()),
		zap.Stringer("booking_id", event.BookingID),
		zap.String("status", event.Status.String()),
		zap.Int("recipients", len(event.Recipients)),
	)
	return nil
}
