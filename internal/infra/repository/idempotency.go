package repository

import (
	"context"
	"time"

	"service-marketplace/internal/infra"
	"service-marketplace/internal/infra/db"
	"service-marketplace/internal/pkg/clock"
	"service-marketplace/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const idempotencyTable = "idempotency_keys"

type IdempotencyRepository struct {
	db    db.DBTX
	clock clock.Clock
}

func NewIdempotencyRepository(dbtx db.DBTX, clk clock.Clock) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx, clock: clk}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, rec shared.IdempotencyRecord) (bool, error) {
	q := db.Psql.Insert(idempotencyTable).
		Columns("key", "user_id", "request_hash", "status", "expires_at").
		Values(rec.Key, rec.UserID, rec.RequestHash, shared.IdempotencyProcessing, rec.ExpiresAt).
		Suffix("ON CONFLICT (key, user_id) DO NOTHING")

	tag, err := db.Exec(ctx, r.db, q)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key string, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	q := db.Psql.Select("key", "user_id", "status", "request_hash", "booking_id", "expires_at").
		From(idempotencyTable).
		Where(sq.Eq{"key": key, "user_id": userID})

	var rec shared.IdempotencyRecord
	err := db.QueryRow(ctx, r.db, q).Scan(&rec.Key, &rec.UserID, &rec.Status, &rec.RequestHash, &rec.BookingID, &rec.ExpiresAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	return &rec, nil
}

// ClaimExpired only succeeds while the stored key is past its expiry.
func (r *IdempotencyRepository) ClaimExpired(ctx context.Context, rec shared.IdempotencyRecord) (bool, error) {
	q := db.Psql.Update(idempotencyTable).
		Set("request_hash", rec.RequestHash).
		Set("status", shared.IdempotencyProcessing).
		Set("booking_id", nil).
		Set("expires_at", rec.ExpiresAt).
		Set("updated_at", r.clock.Now()).
		Where(sq.Eq{"key": rec.Key, "user_id": rec.UserID}).
		Where(sq.Lt{"expires_at": r.clock.Now()})

	tag, err := db.Exec(ctx, r.db, q)
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, key string, userID, bookingID uuid.UUID) error {
	q := db.Psql.Update(idempotencyTable).
		Set("status", shared.IdempotencyCompleted).
		Set("booking_id", bookingID).
		Set("updated_at", r.clock.Now()).
		Where(sq.Eq{"key": key, "user_id": userID})

	if _, err := db.Exec(ctx, r.db, q); err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	return nil
}

// DeleteExpired removes keys that can no longer be replayed.
func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := db.Exec(ctx, r.db, db.Psql.Delete(idempotencyTable).Where(sq.Lt{"expires_at": before}))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
