package shared

import (
	"time"

	"service-marketplace/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ProviderServiceActive   = "active"
	ProviderServiceInactive = "inactive"
)

// ProviderServiceSnapshot is the write-side view of a catalogue entry.
type ProviderServiceSnapshot struct {
	ID              uuid.UUID
	ProviderID      uuid.UUID
	Name            string
	Price           decimal.Decimal
	Currency        string
	DurationMinutes int
	Status          string
}

func (s *ProviderServiceSnapshot) Spec() booking.ServiceSpec {
	return booking.ServiceSpec{
		ID:              s.ID,
		ProviderID:      s.ProviderID,
		Price:           s.Price,
		Currency:        s.Currency,
		DurationMinutes: s.DurationMinutes,
		Active:          s.Status == ProviderServiceActive,
	}
}

const (
	IdempotencyProcessing = "processing"
	IdempotencyCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key         string
	UserID      uuid.UUID
	Status      string
	RequestHash string
	BookingID   *uuid.UUID
	ExpiresAt   time.Time
}
