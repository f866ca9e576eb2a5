package readstore

import (
	"context"

	"service-marketplace/internal/infra"
	"service-marketplace/internal/infra/db"
	"service-marketplace/internal/pkg/pgconv"
	"service-marketplace/internal/usecase/shared"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProviderServiceReadStore struct {
	db db.DBTX
}

func NewProviderServiceReadStore(dbtx db.DBTX) *ProviderServiceReadStore {
	return &ProviderServiceReadStore{db: dbtx}
}

func (r *ProviderServiceReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.ProviderServiceSnapshot, error) {
	q := db.Psql.Select("id", "provider_id", "name", "price", "currency", "duration", "status").
		From("provider_services").
		Where(sq.Eq{"id": id})

	var (
		s        shared.ProviderServiceSnapshot
		price    pgtype.Numeric
		currency *string
	)
	err := db.QueryRow(ctx, r.db, q).Scan(&s.ID, &s.ProviderID, &s.Name, &price, &currency, &s.DurationMinutes, &s.Status)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find provider service", err)
	}

	if s.Price, err = pgconv.DecimalFromNumeric(price); err != nil {
		return nil, infra.WrapRepoErr("invalid provider service price", err)
	}
	if currency != nil {
		s.Currency = *currency
	}
	return &s, nil
}
