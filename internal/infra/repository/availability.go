package repository

import (
	"context"

	"service-marketplace/internal/domain/availability"
	"service-marketplace/internal/infra"
	"service-marketplace/internal/infra/converter"
	"service-marketplace/internal/infra/db"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const availabilitiesTable = "availabilities"

type AvailabilityRepository struct {
	db db.DBTX
}

func NewAvailabilityRepository(dbtx db.DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{db: dbtx}
}

func (r *AvailabilityRepository) LockProvider(ctx context.Context, providerID uuid.UUID) error {
	return lockKey(ctx, r.db, "availability:"+providerID.String())
}

func (r *AvailabilityRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*availability.Availability, error) {
	q := db.Psql.Select(converter.AvailabilityColumns...).
		From(availabilitiesTable).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE")

	a, err := converter.ScanAvailability(db.QueryRow(ctx, r.db, q))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find availability", err)
	}
	return a, nil
}

func (r *AvailabilityRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*availability.Availability, error) {
	q := db.Psql.Select(converter.AvailabilityColumns...).
		From(availabilitiesTable).
		Where(sq.Eq{"provider_id": providerID}).
		OrderBy("day_of_week", "start_time")

	rows, err := db.Query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list availability", err)
	}
	out, err := converter.ScanAvailabilities(rows)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan availability", err)
	}
	return out, nil
}

func (r *AvailabilityRepository) Create(ctx context.Context, a *availability.Availability) error {
	q := db.Psql.Insert(availabilitiesTable).SetMap(converter.AvailabilityToInfra(a))
	if _, err := db.Exec(ctx, r.db, q); err != nil {
		return infra.WrapRepoErr("failed to create availability", err)
	}
	return nil
}

func (r *AvailabilityRepository) Update(ctx context.Context, a *availability.Availability) error {
	values := converter.AvailabilityToInfra(a)
	delete(values, "id")
	delete(values, "provider_id")
	delete(values, "created_at")

	tag, err := db.Exec(ctx, r.db, db.Psql.Update(availabilitiesTable).SetMap(values).Where(sq.Eq{"id": a.ID()}))
	if err != nil {
		return infra.WrapRepoErr("failed to update availability", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("availability not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Exec(ctx, r.db, db.Psql.Delete(availabilitiesTable).Where(sq.Eq{"id": id}))
	if err != nil {
		return infra.WrapRepoErr("failed to delete availability", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("availability not found", nil, infra.KindNotFound)
	}
	return nil
}
