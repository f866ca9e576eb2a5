package request

import (
	"strings"
	"time"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/usecase/commands"

	"github.com/google/uuid"
)

type LocationRequest struct {
	Address    string   `json:"address" binding:"max=500"`
	City       string   `json:"city" binding:"max=200"`
	Country    string   `json:"country" binding:"max=100"`
	PostalCode string   `json:"postal_code" binding:"max=20"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

func (r *LocationRequest) ToDomain() *booking.Location {
	if r == nil {
		return nil
	}
	return &booking.Location{
		Address:    strings.TrimSpace(r.Address),
		City:       strings.TrimSpace(r.City),
		Country:    strings.TrimSpace(r.Country),
		PostalCode: strings.TrimSpace(r.PostalCode),
		Lat:        r.Lat,
		Lng:        r.Lng,
	}
}

type CreateBookingRequest struct {
	ProviderServiceID uuid.UUID        `json:"provider_service_id" binding:"required"`
	ScheduledAt       time.Time        `json:"scheduled_at" binding:"required"`
	Duration          *int             `json:"duration,omitempty"`
	Location          *LocationRequest `json:"location,omitempty"`
	Notes             string           `json:"notes"`
}

func (r CreateBookingRequest) ToInput(clientID uuid.UUID, idempotencyKey string) commands.CreateBookingInput {
	return commands.CreateBookingInput{
		ClientID:          clientID,
		ProviderServiceID: r.ProviderServiceID,
		ScheduledAt:       r.ScheduledAt,
		DurationMinutes:   r.Duration,
		Location:          r.Location.ToDomain(),
		Notes:             r.Notes,
		IdempotencyKey:    strings.TrimSpace(idempotencyKey),
	}
}

type CheckAvailabilityRequest struct {
	ProviderServiceID uuid.UUID `json:"provider_service_id" binding:"required"`
	ScheduledAt       time.Time `json:"scheduled_at" binding:"required"`
	Duration          *int      `json:"duration,omitempty"`
}

func (r CheckAvailabilityRequest) ToInput() commands.CheckAvailabilityInput {
	return commands.CheckAvailabilityInput{
		ProviderServiceID: r.ProviderServiceID,
		ScheduledAt:       r.ScheduledAt,
		DurationMinutes:   r.Duration,
	}
}

// UpdateBookingRequest is a partial update; absent fields are left unchanged.
type UpdateBookingRequest struct {
	Status        *string          `json:"status,omitempty"`
	Reason        *string          `json:"reason,omitempty"`
	ScheduledAt   *time.Time       `json:"scheduled_at,omitempty"`
	Duration      *int             `json:"duration,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	ProviderNotes *string          `json:"provider_notes,omitempty"`
	Location      *LocationRequest `json:"location,omitempty"`
	ClearLocation bool             `json:"clear_location,omitempty"`
}

func (r UpdateBookingRequest) ToInput(actorID, bookingID uuid.UUID) (commands.UpdateBookingInput, error) {
	in := commands.UpdateBookingInput{
		ActorID:         actorID,
		BookingID:       bookingID,
		Reason:          r.Reason,
		ScheduledAt:     r.ScheduledAt,
		DurationMinutes: r.Duration,
		Notes:           r.Notes,
		ProviderNotes:   r.ProviderNotes,
		Location:        r.Location.ToDomain(),
		ClearLocation:   r.ClearLocation,
	}
	if r.Status != nil {
		status, err := booking.ParseStatus(*r.Status)
		if err != nil {
			return commands.UpdateBookingInput{}, err
		}
		in.Status = &status
	}
	return in, nil
}

type ChangeStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason,omitempty"`
}

type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type RescheduleBookingRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Duration    *int      `json:"duration,omitempty"`
}
