package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/pkg/metrics"
	"service-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateBookingInput struct {
	ClientID          uuid.UUID
	ProviderServiceID uuid.UUID
	ScheduledAt       time.Time
	DurationMinutes   *int
	Location          *booking.Location
	Notes             string
	// IdempotencyKey is optional. Keys are scoped to the client.
	IdempotencyKey string
}

type UpdateBookingInput struct {
	ActorID         uuid.UUID
	BookingID       uuid.UUID
	Status          *booking.Status
	Reason          *string
	ScheduledAt     *time.Time
	DurationMinutes *int
	Notes           *string
	ProviderNotes   *string
	Location        *booking.Location
	ClearLocation   bool
}

func (in UpdateBookingInput) reschedules() bool {
	return in.ScheduledAt != nil || in.DurationMinutes != nil
}

func (in UpdateBookingInput) details() booking.DetailsPatch {
	return booking.DetailsPatch{
		Notes:         in.Notes,
		ProviderNotes: in.ProviderNotes,
		Location:      in.Location,
		ClearLocation: in.ClearLocation,
	}
}

func (in UpdateBookingInput) isEmpty() bool {
	return in.Status == nil && !in.reschedules() && in.details().IsEmpty()
}

type CheckAvailabilityInput struct {
	ProviderServiceID uuid.UUID
	ScheduledAt       time.Time
	DurationMinutes   *int
}

type AvailabilityCheck struct {
	Available bool
	Start     time.Time
	End       time.Time
	Conflict  *booking.ConflictError
}

// BookingResult is a mutated booking plus the event to hand to the notifier.
// Event is nil when nothing worth notifying happened, including idempotent replays.
type BookingResult struct {
	Booking  *booking.Booking
	Event    *booking.Event
	Replayed bool
}

type BookingCommands interface {
	Create(ctx context.Context, in CreateBookingInput) (*BookingResult, error)
	Update(ctx context.Context, in UpdateBookingInput) (*BookingResult, error)
	ChangeStatus(ctx context.Context, actorID, bookingID uuid.UUID, status booking.Status, reason *string) (*BookingResult, error)
	Cancel(ctx context.Context, actorID, bookingID uuid.UUID, reason *string) (*BookingResult, error)
	Reschedule(ctx context.Context, actorID, bookingID uuid.UUID, scheduledAt time.Time, durationMinutes *int) (*BookingResult, error)
	Delete(ctx context.Context, actorID, bookingID uuid.UUID) error
	CheckAvailability(ctx context.Context, in CheckAvailabilityInput) (*AvailabilityCheck, error)
}

type bookingCommandsImpl struct {
	uow            shared.UnitOfWork
	services       *booking.Services
	idempotencyTTL time.Duration
	metrics        *metrics.Metrics
}

func NewBookingCommands(uow shared.UnitOfWork, services *booking.Services, idempotencyTTL time.Duration, m *metrics.Metrics) BookingCommands {
	return &bookingCommandsImpl{
		uow:            uow,
		services:       services,
		idempotencyTTL: idempotencyTTL,
		metrics:        m,
	}
}

func (uc *bookingCommandsImpl) Create(ctx context.Context, in CreateBookingInput) (*BookingResult, error) {
	var hash string
	if in.IdempotencyKey != "" {
		hash = requestHash(in)
	}

	var result *BookingResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil

		if in.IdempotencyKey != "" {
			existing, err := uc.claimIdempotencyKey(ctx, tx, in, hash)
			if err != nil {
				return err
			}
			if existing != nil {
				result = &BookingResult{Booking: existing, Replayed: true}
				return nil
			}
		}

		svc, err := tx.Reads().ProviderServiceByID(ctx, in.ProviderServiceID)
		if err != nil {
			return notFoundAs(err, ErrProviderServiceNotFound)
		}

		b, event, err := booking.NewBooking(uc.services, booking.NewBookingParams{
			ClientID:        in.ClientID,
			Service:         svc.Spec(),
			ScheduledAt:     in.ScheduledAt,
			DurationMinutes: in.DurationMinutes,
			Location:        in.Location,
			Notes:           in.Notes,
		})
		if err != nil {
			return err
		}

		repo := tx.Bookings()
		if err := reserveSlot(ctx, repo, b); err != nil {
			return err
		}
		if err := repo.Create(ctx, b); err != nil {
			return exclusionConflict(err, b)
		}

		if in.IdempotencyKey != "" {
			if err := tx.Idempotency().UpdateStatusCompleted(ctx, in.IdempotencyKey, in.ClientID, b.ID()); err != nil {
				return err
			}
		}

		result = &BookingResult{Booking: b, Event: event}
		return nil
	})
	if err != nil {
		if isSlotConflict(err) {
			uc.metrics.Conflict()
		}
		return nil, err
	}

	if !result.Replayed {
		uc.metrics.BookingCreated()
	}
	return result, nil
}

// claimIdempotencyKey returns the booking of an earlier completed request with the
// same key, or nil when this request owns the key and should proceed.
func (uc *bookingCommandsImpl) claimIdempotencyKey(ctx context.Context, tx shared.Tx, in CreateBookingInput, hash string) (*booking.Booking, error) {
	now := uc.services.Clock.Now()
	rec := shared.IdempotencyRecord{
		Key:         in.IdempotencyKey,
		UserID:      in.ClientID,
		Status:      shared.IdempotencyProcessing,
		RequestHash: hash,
		ExpiresAt:   now.Add(uc.idempotencyTTL),
	}

	repo := tx.Idempotency()
	inserted, err := repo.TryInsert(ctx, rec)
	if err != nil {
		return nil, err
	}
	if inserted {
		return nil, nil
	}

	existing, err := repo.Get(ctx, in.IdempotencyKey, in.ClientID)
	if err != nil {
		return nil, err
	}

	if !existing.ExpiresAt.After(now) {
		claimed, err := repo.ClaimExpired(ctx, rec)
		if err != nil {
			return nil, err
		}
		if claimed {
			return nil, nil
		}
		return nil, ErrIdempotencyInProgress
	}

	if existing.RequestHash != hash {
		return nil, ErrIdempotencyKeyReused
	}
	if existing.Status == shared.IdempotencyCompleted && existing.BookingID != nil {
		b, err := tx.Bookings().FindByIDForUpdate(ctx, *existing.BookingID)
		if err != nil {
			return nil, notFoundAs(err, ErrBookingNotFound)
		}
		return b, nil
	}
	return nil, ErrIdempotencyInProgress
}

// Update applies the status change, then schedule changes, then descriptive edits,
// all in one transaction. The status rules are checked against the committed
// schedule. The status event wins over booking_updated so the counterpart is told
// about the most significant change.
func (uc *bookingCommandsImpl) Update(ctx context.Context, in UpdateBookingInput) (*BookingResult, error) {
	if in.isEmpty() {
		return nil, ErrNothingToUpdate
	}

	var (
		result   *BookingResult
		previous booking.Status
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		now := uc.services.Clock.Now()
		policy := uc.services.Policy
		repo := tx.Bookings()

		b, err := repo.FindByIDForUpdate(ctx, in.BookingID)
		if err != nil {
			return notFoundAs(err, ErrBookingNotFound)
		}
		if !b.IsParticipant(in.ActorID) {
			return booking.ErrNotParticipant
		}
		previous = b.Status()

		var updated, statusEvent *booking.Event

		if in.Status != nil {
			if statusEvent, err = b.Transition(in.ActorID, *in.Status, in.Reason, policy, now); err != nil {
				return err
			}
		}

		if in.reschedules() {
			start := b.ScheduledAt()
			if in.ScheduledAt != nil {
				start = *in.ScheduledAt
			}
			if updated, err = b.Reschedule(in.ActorID, start, in.DurationMinutes, policy, now); err != nil {
				return err
			}
			if err := reserveSlot(ctx, repo, b); err != nil {
				return err
			}
		}

		notesChanged, err := b.UpdateDetails(in.ActorID, in.details(), now)
		if err != nil {
			return err
		}
		if notesChanged && updated == nil {
			updated = b.UpdatedEvent(in.ActorID, now)
		}

		if err := repo.Update(ctx, b); err != nil {
			return exclusionConflict(err, b)
		}

		event := statusEvent
		if event == nil {
			event = updated
		}
		result = &BookingResult{Booking: b, Event: event}
		return nil
	})
	if err != nil {
		if isSlotConflict(err) {
			uc.metrics.Conflict()
		}
		return nil, err
	}

	if result.Booking.Status() != previous {
		uc.metrics.Transition(previous.String(), result.Booking.Status().String())
	}
	return result, nil
}

func (uc *bookingCommandsImpl) ChangeStatus(ctx context.Context, actorID, bookingID uuid.UUID, status booking.Status, reason *string) (*BookingResult, error) {
	return uc.Update(ctx, UpdateBookingInput{
		ActorID:   actorID,
		BookingID: bookingID,
		Status:    &status,
		Reason:    reason,
	})
}

func (uc *bookingCommandsImpl) Cancel(ctx context.Context, actorID, bookingID uuid.UUID, reason *string) (*BookingResult, error) {
	return uc.ChangeStatus(ctx, actorID, bookingID, booking.StatusCancelled, reason)
}

func (uc *bookingCommandsImpl) Reschedule(ctx context.Context, actorID, bookingID uuid.UUID, scheduledAt time.Time, durationMinutes *int) (*BookingResult, error) {
	return uc.Update(ctx, UpdateBookingInput{
		ActorID:         actorID,
		BookingID:       bookingID,
		ScheduledAt:     &scheduledAt,
		DurationMinutes: durationMinutes,
	})
}

func (uc *bookingCommandsImpl) Delete(ctx context.Context, actorID, bookingID uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		repo := tx.Bookings()
		b, err := repo.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return notFoundAs(err, ErrBookingNotFound)
		}
		if err := b.CheckDeletable(actorID); err != nil {
			return err
		}
		return notFoundAs(repo.Delete(ctx, bookingID), ErrBookingNotFound)
	})
}

// CheckAvailability runs the conflict check without a transaction or lock.
// The answer is advisory; Create repeats the check under the provider lock.
func (uc *bookingCommandsImpl) CheckAvailability(ctx context.Context, in CheckAvailabilityInput) (*AvailabilityCheck, error) {
	reads := uc.uow.CommandReads()

	svc, err := reads.ProviderServiceByID(ctx, in.ProviderServiceID)
	if err != nil {
		return nil, notFoundAs(err, ErrProviderServiceNotFound)
	}
	if svc.Status != shared.ProviderServiceActive {
		return nil, booking.ErrServiceUnavailable
	}

	minutes := svc.DurationMinutes
	if in.DurationMinutes != nil {
		minutes = *in.DurationMinutes
	}
	window, err := booking.NewTimeWindow(in.ScheduledAt, minutes)
	if err != nil {
		return nil, err
	}

	active, err := reads.ActiveBookingsByProvider(ctx, svc.ProviderID)
	if err != nil {
		return nil, err
	}

	check := &AvailabilityCheck{Available: true, Start: window.Start(), End: window.End()}
	if hit := booking.FindConflict(window, active, uuid.Nil); hit != nil {
		check.Available = false
		check.Conflict = booking.NewConflictError(hit)
	}
	return check, nil
}

func requestHash(in CreateBookingInput) string {
	data, _ := json.Marshal(struct {
		ProviderServiceID uuid.UUID         `json:"provider_service_id"`
		ScheduledAt       time.Time         `json:"scheduled_at"`
		DurationMinutes   *int              `json:"duration,omitempty"`
		Location          *booking.Location `json:"location,omitempty"`
		Notes             string            `json:"notes"`
	}{
		ProviderServiceID: in.ProviderServiceID,
		ScheduledAt:       in.ScheduledAt.UTC(),
		DurationMinutes:   in.DurationMinutes,
		Location:          in.Location,
		Notes:             in.Notes,
	})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
