package queries

import (
	"context"

	"service-marketplace/internal/domain/booking"

	"github.com/google/uuid"
)

type BookingFilter struct {
	// As restricts the list to one side of the booking; nil lists both.
	As     *booking.Party
	Status *booking.Status
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, filter BookingFilter, after *Keyset, limit int) ([]*booking.Booking, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, actorID, id uuid.UUID) (*BookingView, error)
	List(ctx context.Context, actorID uuid.UUID, filter BookingFilter, cursor *Cursor, limit int) ([]*BookingView, *Cursor, error)
}

type bookingQueriesImpl struct {
	repo BookingReadStore
}

func NewBookingQueries(repo BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actorID, id uuid.UUID) (*BookingView, error) {
	b, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(actorID) {
		return nil, booking.ErrNotParticipant
	}
	return NewBookingView(b, actorID), nil
}

// List pages through the actor's bookings, newest appointment first.
func (q *bookingQueriesImpl) List(ctx context.Context, actorID uuid.UUID, filter BookingFilter, cursor *Cursor, limit int) ([]*BookingView, *Cursor, error) {
	limit = ValidateLimit(limit)

	var after *Keyset
	if cursor != nil && cursor.After != "" {
		ks, err := DecodeAfterCursor(cursor.After)
		if err != nil {
			return nil, nil, err
		}
		after = ks
	}

	rows, err := q.repo.ListByParticipant(ctx, actorID, filter, after, limit+1)
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.ScheduledAt(), last.ID())}
		rows = rows[:limit]
	}

	views := make([]*BookingView, len(rows))
	for i, b := range rows {
		views[i] = NewBookingView(b, actorID)
	}
	return views, next, nil
}
