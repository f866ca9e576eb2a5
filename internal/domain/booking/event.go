package booking

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCreated   EventType = "booking_created"
	EventConfirmed EventType = "booking_confirmed"
	EventRejected  EventType = "booking_rejected"
	EventCompleted EventType = "booking_completed"
	EventCancelled EventType = "booking_cancelled"
	EventUpdated   EventType = "booking_updated"
)

func (t EventType) String() string {
	return string(t)
}

// Event describes a booking change for the notification dispatcher.
// Mutations return it next to the booking; delivery is the caller's job.
type Event struct {
	Type           EventType   `json:"type"`
	BookingID      uuid.UUID   `json:"booking_id"`
	ClientID       uuid.UUID   `json:"client_id"`
	ProviderID     uuid.UUID   `json:"provider_id"`
	ActorID        uuid.UUID   `json:"actor_id"`
	PreviousStatus Status      `json:"previous_status,omitempty"`
	Status         Status      `json:"status"`
	ScheduledAt    time.Time   `json:"scheduled_at"`
	Reason         *string     `json:"reason,omitempty"`
	Recipients     []uuid.UUID `json:"recipients"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

func newEvent(t EventType, b *Booking, actorID uuid.UUID, previous Status, reason *string, now time.Time) *Event {
	return &Event{
		Type:           t,
		BookingID:      b.id,
		ClientID:       b.clientID,
		ProviderID:     b.providerID,
		ActorID:        actorID,
		PreviousStatus: previous,
		Status:         b.status,
		ScheduledAt:    b.window.Start(),
		Reason:         reason,
		Recipients:     b.counterparts(actorID),
		OccurredAt:     now,
	}
}
