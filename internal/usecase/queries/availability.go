package queries

import (
	"context"

	"github.com/google/uuid"
)

type AvailabilityReadStore interface {
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*AvailabilityView, error)
}

type AvailabilityQueries interface {
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*AvailabilityView, error)
}

type availabilityQueriesImpl struct {
	repo AvailabilityReadStore
}

func NewAvailabilityQueries(repo AvailabilityReadStore) AvailabilityQueries {
	return &availabilityQueriesImpl{repo: repo}
}

func (q *availabilityQueriesImpl) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*AvailabilityView, error) {
	views, err := q.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []*AvailabilityView{}
	}
	return views, nil
}
