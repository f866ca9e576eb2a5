package repository

import (
	"context"
	"time"

	"service-marketplace/internal/infra"
	"service-marketplace/internal/infra/db"

	"github.com/google/uuid"
)

const notificationsTable = "notifications"

// Notification is one delivered message for one recipient.
type Notification struct {
	BookingID   uuid.UUID
	RecipientID uuid.UUID
	Type        string
	Payload     []byte
	OccurredAt  time.Time
}

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(dbtx db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: dbtx}
}

// Insert reports false when the same notification was already stored by an earlier attempt.
func (r *NotificationRepository) Insert(ctx context.Context, n Notification) (bool, error) {
	q := db.Psql.Insert(notificationsTable).
		Columns("booking_id", "recipient_id", "type", "payload", "occurred_at").
		Values(n.BookingID, n.RecipientID, n.Type, n.Payload, n.OccurredAt).
		Suffix("ON CONFLICT ON CONSTRAINT notifications_dedup DO NOTHING")

	tag, err := db.Exec(ctx, r.db, q)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert notification", err)
	}
	return tag.RowsAffected() == 1, nil
}
