package readstore

import (
	"context"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/infra"
	"service-marketplace/internal/infra/converter"
	"service-marketplace/internal/infra/db"
	"service-marketplace/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	q := db.Psql.Select(converter.BookingColumns...).From("bookings").Where(sq.Eq{"id": id})

	b, err := converter.ScanBooking(db.QueryRow(ctx, r.db, q))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return b, nil
}

func (r *BookingReadStore) ListByParticipant(ctx context.Context, userID uuid.UUID, filter queries.BookingFilter, after *queries.Keyset, limit int) ([]*booking.Booking, error) {
	rows, err := db.Query(ctx, r.db, ListByParticipantQuery(userID, filter, after, limit))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	out, err := converter.ScanBookings(rows)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan bookings", err)
	}
	return out, nil
}

// ListByParticipantQuery orders by appointment time, newest first, with id as tie-breaker.
func ListByParticipantQuery(userID uuid.UUID, filter queries.BookingFilter, after *queries.Keyset, limit int) sq.SelectBuilder {
	q := db.Psql.Select(converter.BookingColumns...).From("bookings")

	switch {
	case filter.As == nil:
		q = q.Where(sq.Or{sq.Eq{"client_id": userID}, sq.Eq{"provider_id": userID}})
	case *filter.As == booking.PartyProvider:
		q = q.Where(sq.Eq{"provider_id": userID})
	default:
		q = q.Where(sq.Eq{"client_id": userID})
	}
	if filter.Status != nil {
		q = q.Where(sq.Eq{"status": filter.Status.String()})
	}
	if after != nil {
		q = q.Where(sq.Expr("(scheduled_at, id) < (?, ?)", after.ScheduledAt, after.ID))
	}

	// #nosec G115 -- limit is clamped by queries.ValidateLimit
	return q.OrderBy("scheduled_at DESC", "id DESC").Limit(uint64(limit))
}
