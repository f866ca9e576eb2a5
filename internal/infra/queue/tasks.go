package queue

import (
	"encoding/json"
	"fmt"

	"service-marketplace/internal/domain/booking"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingNotify    = "booking:notify"
	TypePurgeIdempotency = "maintenance:purge_idempotency"

	QueueNotifications = "notifications"
	QueueMaintenance   = "maintenance"
)

func NewBookingNotifyTask(event booking.Event) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking event: %w", err)
	}
	return asynq.NewTask(TypeBookingNotify, payload), nil
}

func NewPurgeIdempotencyTask() *asynq.Task {
	return asynq.NewTask(TypePurgeIdempotency, nil)
}
