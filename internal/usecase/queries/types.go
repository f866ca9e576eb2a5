package queries

import (
	"time"

	"service-marketplace/internal/domain/availability"
	"service-marketplace/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingView is the read model returned to participants.
type BookingView struct {
	ID                 uuid.UUID         `json:"id"`
	ClientID           uuid.UUID         `json:"client_id"`
	ProviderID         uuid.UUID         `json:"provider_id"`
	ProviderServiceID  uuid.UUID         `json:"provider_service_id"`
	ScheduledAt        time.Time         `json:"scheduled_at"`
	EndsAt             time.Time         `json:"ends_at"`
	DurationMinutes    int               `json:"duration"`
	Price              decimal.Decimal   `json:"price"`
	Currency           string            `json:"currency"`
	Location           *booking.Location `json:"location,omitempty"`
	Notes              string            `json:"notes"`
	ProviderNotes      string            `json:"provider_notes,omitempty"`
	Status             booking.Status    `json:"status"`
	CancellationReason *string           `json:"cancellation_reason,omitempty"`
	RejectionReason    *string           `json:"rejection_reason,omitempty"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty"`
	AllowedTransitions []booking.Status  `json:"allowed_transitions"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// NewBookingView renders b for viewer. Provider notes are only shown to the provider.
func NewBookingView(b *booking.Booking, viewer uuid.UUID) *BookingView {
	w := b.Window()
	v := &BookingView{
		ID:                 b.ID(),
		ClientID:           b.ClientID(),
		ProviderID:         b.ProviderID(),
		ProviderServiceID:  b.ProviderServiceID(),
		ScheduledAt:        w.Start(),
		EndsAt:             w.End(),
		DurationMinutes:    w.DurationMinutes(),
		Price:              b.Price().Amount(),
		Currency:           b.Price().Currency(),
		Location:           b.Location(),
		Notes:              b.Notes().String(),
		Status:             b.Status(),
		CancellationReason: b.CancellationReason(),
		RejectionReason:    b.RejectionReason(),
		CompletedAt:        b.CompletedAt(),
		AllowedTransitions: b.AllowedTransitions(viewer),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	}
	if viewer == b.ProviderID() {
		v.ProviderNotes = b.ProviderNotes().String()
	}
	if v.AllowedTransitions == nil {
		v.AllowedTransitions = []booking.Status{}
	}
	return v
}

type AvailabilityView struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	DayOfWeek  int       `json:"day_of_week"`
	DayName    string    `json:"day_name"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewAvailabilityView(a *availability.Availability) *AvailabilityView {
	return &AvailabilityView{
		ID:         a.ID(),
		ProviderID: a.ProviderID(),
		DayOfWeek:  a.Day().Int(),
		DayName:    a.Day().String(),
		StartTime:  a.Start().String(),
		EndTime:    a.End().String(),
		UpdatedAt:  a.UpdatedAt(),
	}
}
