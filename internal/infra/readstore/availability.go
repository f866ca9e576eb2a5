package readstore

import (
	"context"

	"service-marketplace/internal/infra"
	"service-marketplace/internal/infra/converter"
	"service-marketplace/internal/infra/db"
	"service-marketplace/internal/usecase/queries"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type AvailabilityReadStore struct {
	db db.DBTX
}

func NewAvailabilityReadStore(dbtx db.DBTX) *AvailabilityReadStore {
	return &AvailabilityReadStore{db: dbtx}
}

func (r *AvailabilityReadStore) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*queries.AvailabilityView, error) {
	q := db.Psql.Select(converter.AvailabilityColumns...).
		From("availabilities").
		Where(sq.Eq{"provider_id": providerID}).
		OrderBy("day_of_week", "start_time")

	rows, err := db.Query(ctx, r.db, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list availability", err)
	}
	slots, err := converter.ScanAvailabilities(rows)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan availability", err)
	}

	views := make([]*queries.AvailabilityView, len(slots))
	for i, a := range slots {
		views[i] = queries.NewAvailabilityView(a)
	}
	return views, nil
}
