package response

import (
	"time"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/usecase/commands"
	"service-marketplace/internal/usecase/queries"
)

type BookingResponse struct {
	ID                 string            `json:"id"`
	ClientID           string            `json:"client_id"`
	ProviderID         string            `json:"provider_id"`
	ProviderServiceID  string            `json:"provider_service_id"`
	ScheduledAt        time.Time         `json:"scheduled_at"`
	EndsAt             time.Time         `json:"ends_at"`
	Duration           int               `json:"duration"`
	Price              string            `json:"price"`
	Currency           string            `json:"currency"`
	Location           *booking.Location `json:"location,omitempty"`
	Notes              string            `json:"notes"`
	ProviderNotes      string            `json:"provider_notes,omitempty"`
	Status             string            `json:"status"`
	CancellationReason *string           `json:"cancellation_reason,omitempty"`
	RejectionReason    *string           `json:"rejection_reason,omitempty"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty"`
	AllowedTransitions []string          `json:"allowed_transitions"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	transitions := make([]string, len(v.AllowedTransitions))
	for i, s := range v.AllowedTransitions {
		transitions[i] = s.String()
	}
	return &BookingResponse{
		ID:                 v.ID.String(),
		ClientID:           v.ClientID.String(),
		ProviderID:         v.ProviderID.String(),
		ProviderServiceID:  v.ProviderServiceID.String(),
		ScheduledAt:        v.ScheduledAt,
		EndsAt:             v.EndsAt,
		Duration:           v.DurationMinutes,
		Price:              v.Price.StringFixed(2),
		Currency:           v.Currency,
		Location:           v.Location,
		Notes:              v.Notes,
		ProviderNotes:      v.ProviderNotes,
		Status:             v.Status.String(),
		CancellationReason: v.CancellationReason,
		RejectionReason:    v.RejectionReason,
		CompletedAt:        v.CompletedAt,
		AllowedTransitions: transitions,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

type BookingListResponse struct {
	Items      []*BookingResponse `json:"items"`
	NextCursor *string            `json:"next_cursor,omitempty"`
}

func FromBookingViews(views []*queries.BookingView, next *queries.Cursor) *BookingListResponse {
	items := make([]*BookingResponse, len(views))
	for i, v := range views {
		items[i] = FromBookingView(v)
	}
	res := &BookingListResponse{Items: items}
	if next != nil && next.After != "" {
		after := next.After
		res.NextCursor = &after
	}
	return res
}

type AvailabilityCheckResponse struct {
	Available   bool       `json:"available"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	EndsAt      time.Time  `json:"ends_at"`
	ConflictID  *string    `json:"conflicting_booking_id,omitempty"`
	ConflictAt  *time.Time `json:"conflicting_scheduled_at,omitempty"`
}

func FromAvailabilityCheck(r *commands.AvailabilityCheck) *AvailabilityCheckResponse {
	res := &AvailabilityCheckResponse{
		Available:   r.Available,
		ScheduledAt: r.Start,
		EndsAt:      r.End,
	}
	if r.Conflict != nil {
		id := r.Conflict.BookingID.String()
		at := r.Conflict.Start
		res.ConflictID = &id
		res.ConflictAt = &at
	}
	return res
}
