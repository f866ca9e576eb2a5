//go:build unit || e2e

package builder

import (
	"time"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/handler/dto/request"
	"service-marketplace/internal/usecase/commands"
	"service-marketplace/internal/usecase/queries"
	"service-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultNow is the clock value builders schedule relative to.
var DefaultNow = time.Date(2030, time.January, 7, 9, 0, 0, 0, time.UTC)

type BookingBuilder struct {
	ID                 uuid.UUID
	ClientID           uuid.UUID
	ProviderID         uuid.UUID
	ServiceID          uuid.UUID
	ScheduledAt        time.Time
	DurationMinutes    int
	Price              decimal.Decimal
	Currency           string
	ServiceActive      bool
	Location           *booking.Location
	Notes              string
	ProviderNotes      string
	Status             booking.Status
	CancellationReason *string
	RejectionReason    *string
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		ID:              uuid.New(),
		ClientID:        uuid.New(),
		ProviderID:      uuid.New(),
		ServiceID:       uuid.New(),
		ScheduledAt:     DefaultNow.Add(72 * time.Hour),
		DurationMinutes: 60,
		Price:           decimal.RequireFromString("80.00"),
		Currency:        "USD",
		ServiceActive:   true,
		Notes:           "Please ring the bell",
		Status:          booking.StatusPending,
		CreatedAt:       DefaultNow,
		UpdatedAt:       DefaultNow,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) WithStatus(s booking.Status) *BookingBuilder {
	b.Status = s
	return b
}

func (b *BookingBuilder) WithScheduledAt(t time.Time) *BookingBuilder {
	b.ScheduledAt = t
	return b
}

// Build methods
func (b *BookingBuilder) BuildDomain() *booking.Booking {
	return booking.ReconstructBooking(booking.ReconstructParams{
		ID:                 b.ID,
		ClientID:           b.ClientID,
		ProviderID:         b.ProviderID,
		ProviderServiceID:  b.ServiceID,
		ScheduledAt:        b.ScheduledAt,
		DurationMinutes:    b.DurationMinutes,
		Price:              b.Price,
		Currency:           b.Currency,
		Location:           b.Location,
		Notes:              b.Notes,
		Status:             b.Status,
		CancellationReason: b.CancellationReason,
		RejectionReason:    b.RejectionReason,
		CompletedAt:        b.CompletedAt,
		ProviderNotes:      b.ProviderNotes,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	})
}

func (b *BookingBuilder) BuildServiceSpec() booking.ServiceSpec {
	return booking.ServiceSpec{
		ID:              b.ServiceID,
		ProviderID:      b.ProviderID,
		Price:           b.Price,
		Currency:        b.Currency,
		DurationMinutes: b.DurationMinutes,
		Active:          b.ServiceActive,
	}
}

func (b *BookingBuilder) BuildServiceSnapshot() *shared.ProviderServiceSnapshot {
	status := shared.ProviderServiceActive
	if !b.ServiceActive {
		status = shared.ProviderServiceInactive
	}
	return &shared.ProviderServiceSnapshot{
		ID:              b.ServiceID,
		ProviderID:      b.ProviderID,
		Name:            "Deep cleaning",
		Price:           b.Price,
		Currency:        b.Currency,
		DurationMinutes: b.DurationMinutes,
		Status:          status,
	}
}

func (b *BookingBuilder) BuildNewParams() booking.NewBookingParams {
	duration := b.DurationMinutes
	return booking.NewBookingParams{
		ClientID:        b.ClientID,
		Service:         b.BuildServiceSpec(),
		ScheduledAt:     b.ScheduledAt,
		DurationMinutes: &duration,
		Location:        b.Location,
		Notes:           b.Notes,
	}
}

func (b *BookingBuilder) BuildViewQuery(viewer uuid.UUID) *queries.BookingView {
	return queries.NewBookingView(b.BuildDomain(), viewer)
}

func (b *BookingBuilder) BuildResult(event *booking.Event) *commands.BookingResult {
	return &commands.BookingResult{Booking: b.BuildDomain(), Event: event}
}

func (b *BookingBuilder) BuildCreateRequestDTO() request.CreateBookingRequest {
	duration := b.DurationMinutes
	return request.CreateBookingRequest{
		ProviderServiceID: b.ServiceID,
		ScheduledAt:       b.ScheduledAt,
		Duration:          &duration,
		Notes:             b.Notes,
	}
}

// BuildEvent returns the event a command would emit for the booking in its current status.
func (b *BookingBuilder) BuildEvent(t booking.EventType, actorID uuid.UUID) *booking.Event {
	return &booking.Event{
		Type:        t,
		BookingID:   b.ID,
		ClientID:    b.ClientID,
		ProviderID:  b.ProviderID,
		ActorID:     actorID,
		Status:      b.Status,
		ScheduledAt: b.ScheduledAt,
		OccurredAt:  DefaultNow,
	}
}
