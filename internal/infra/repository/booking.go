package repository

import (
	"context"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/infra"
	"service-marketplace/internal/infra/converter"
	"service-marketplace/internal/infra/db"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const bookingsTable = "bookings"

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

// LockProvider takes a transaction-scoped advisory lock keyed on the provider.
func (r *BookingRepository) LockProvider(ctx context.Context, providerID uuid.UUID) error {
	return lockKey(ctx, r.db, "booking:"+providerID.String())
}

func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	q := db.Psql.Select(converter.BookingColumns...).
		From(bookingsTable).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE")

	b, err := converter.ScanBooking(db.QueryRow(ctx, r.db, q))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking for update", err)
	}
	return b, nil
}

func (r *BookingRepository) ListActiveByProvider(ctx context.Context, providerID, exclude uuid.UUID) ([]*booking.Booking, error) {
	q := ActiveByProviderQuery(providerID, exclude)

	rows, err := db.Query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list active bookings", err)
	}
	out, err := converter.ScanBookings(rows)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan active bookings", err)
	}
	return out, nil
}

// ActiveByProviderQuery selects the bookings that occupy a provider's calendar.
func ActiveByProviderQuery(providerID, exclude uuid.UUID) sq.SelectBuilder {
	statuses := make([]string, 0, len(booking.ActiveStatuses))
	for _, s := range booking.ActiveStatuses {
		statuses = append(statuses, s.String())
	}

	q := db.Psql.Select(converter.BookingColumns...).
		From(bookingsTable).
		Where(sq.Eq{"provider_id": providerID, "status": statuses}).
		OrderBy("scheduled_at")
	if exclude != uuid.Nil {
		q = q.Where(sq.NotEq{"id": exclude})
	}
	return q
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	values, err := converter.BookingToInfra(b)
	if err != nil {
		return infra.WrapRepoErr("failed to convert booking", err)
	}

	if _, err := db.Exec(ctx, r.db, db.Psql.Insert(bookingsTable).SetMap(values)); err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	values, err := converter.BookingToInfra(b)
	if err != nil {
		return infra.WrapRepoErr("failed to convert booking", err)
	}
	for _, immutable := range []string{"id", "client_id", "provider_id", "provider_service_id", "created_at"} {
		delete(values, immutable)
	}

	tag, err := db.Exec(ctx, r.db, db.Psql.Update(bookingsTable).SetMap(values).Where(sq.Eq{"id": b.ID()}))
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Exec(ctx, r.db, db.Psql.Delete(bookingsTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return infra.WrapRepoErr("failed to delete booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

func lockKey(ctx context.Context, dbtx db.DBTX, key string) error {
	if _, err := dbtx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key); err != nil {
		return infra.WrapRepoErr("failed to acquire advisory lock", err)
	}
	return nil
}
