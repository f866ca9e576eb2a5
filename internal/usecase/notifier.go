package usecase

import (
	"context"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/pkg/metrics"

	"go.uber.org/zap"
)

// EventPublisher delivers booking events to the notification channel.
type EventPublisher interface {
	Publish(ctx context.Context, event booking.Event) error
}

// EventNotifier forwards events produced by commands. It never fails the caller.
type EventNotifier interface {
	Notify(ctx context.Context, event *booking.Event)
}

type Notifier struct {
	publisher EventPublisher
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewNotifier(publisher EventPublisher, logger *zap.Logger, m *metrics.Metrics) EventNotifier {
	return &Notifier{publisher: publisher, logger: logger, metrics: m}
}

func (n *Notifier) Notify(ctx context.Context, event *booking.Event) {
	if event == nil {
		return
	}
	// The request may already be finishing; delivery must not be cut short by it.
	ctx = context.WithoutCancel(ctx)

	if err := n.publisher.Publish(ctx, *event); err != nil {
		n.metrics.NotificationResult("error")
		n.logger.Error("failed to publish booking event",
			zap.String("type", event.Type.String()),
			zap.Stringer("booking_id", event.BookingID),
			zap.Error(err),
		)
		return
	}
	n.metrics.NotificationResult("ok")
}
