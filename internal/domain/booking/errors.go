package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"service-marketplace/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrServiceUnavailable = fmt.Errorf("%w: provider service is not active", errs.ErrUnavailable)
	ErrSelfBooking        = fmt.Errorf("%w: provider cannot book their own service", errs.ErrValidation)

	ErrNotParticipant           = fmt.Errorf("%w: actor is not a participant of the booking", errs.ErrForbidden)
	ErrActorNotAllowed          = fmt.Errorf("%w: actor may not perform this transition", errs.ErrForbidden)
	ErrCancellationWindowClosed = fmt.Errorf("%w: cancellation window has closed", errs.ErrForbidden)
	ErrRescheduleNotAllowed     = fmt.Errorf("%w: only the client may reschedule", errs.ErrForbidden)
	ErrRescheduleWindowClosed   = fmt.Errorf("%w: reschedule window has closed", errs.ErrForbidden)
	ErrNotReschedulable         = fmt.Errorf("%w: booking can only be rescheduled while pending or confirmed", errs.ErrForbidden)
	ErrDeleteNotAllowed         = fmt.Errorf("%w: only the client may delete a booking", errs.ErrForbidden)
	ErrNotDeletable             = fmt.Errorf("%w: booking in a terminal state cannot be deleted", errs.ErrForbidden)
	ErrProviderNotesNotAllowed  = fmt.Errorf("%w: only the provider may edit provider notes", errs.ErrForbidden)
)

func leadTimeError(earliest time.Time) error {
	return fmt.Errorf("%w: booking must start at or after %s", errs.ErrLeadTime, earliest.UTC().Format(time.RFC3339))
}

func durationError(minutes int) error {
	return fmt.Errorf("%w: %d minutes is outside [%d, %d]", errs.ErrDuration, minutes, MinDurationMinutes, MaxDurationMinutes)
}

// ConflictError identifies the active booking that occupies the requested interval.
type ConflictError struct {
	BookingID uuid.UUID
	Start     time.Time
	End       time.Time
}

func NewConflictError(b *Booking) *ConflictError {
	return &ConflictError{
		BookingID: b.ID(),
		Start:     b.Window().Start(),
		End:       b.Window().End(),
	}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: overlaps booking %s [%s, %s)",
		e.BookingID, e.Start.UTC().Format(time.RFC3339), e.End.UTC().Format(time.RFC3339))
}

func (e *ConflictError) Is(target error) bool {
	return target == errs.ErrConflict
}

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == errs.ErrInvalidTransition
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == errs.ErrValidation
}

// AsConflict extracts the conflict details from err when present.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
