package converter

import (
	"time"

	"service-marketplace/internal/domain/availability"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var AvailabilityColumns = []string{
	"id",
	"provider_id",
	"day_of_week",
	"start_time",
	"end_time",
	"created_at",
	"updated_at",
}

func ScanAvailability(row pgx.Row) (*availability.Availability, error) {
	var (
		a          availabilityRow
		start, end pgtype.Time
	)
	if err := row.Scan(&a.id, &a.providerID, &a.day, &start, &end, &a.createdAt, &a.updatedAt); err != nil {
		return nil, err
	}
	return availability.ReconstructAvailability(
		a.id,
		a.providerID,
		availability.DayOfWeek(a.day),
		TimeOfDayFromPgtype(start),
		TimeOfDayFromPgtype(end),
		a.createdAt,
		a.updatedAt,
	), nil
}

func ScanAvailabilities(rows pgx.Rows) ([]*availability.Availability, error) {
	defer rows.Close()
	var out []*availability.Availability
	for rows.Next() {
		a, err := ScanAvailability(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func AvailabilityToInfra(a *availability.Availability) map[string]any {
	return map[string]any{
		"id":          a.ID(),
		"provider_id": a.ProviderID(),
		"day_of_week": int16(a.Day().Int()),
		"start_time":  TimeOfDayToPgtype(a.Start()),
		"end_time":    TimeOfDayToPgtype(a.End()),
		"created_at":  a.CreatedAt(),
		"updated_at":  a.UpdatedAt(),
	}
}

func TimeOfDayToPgtype(t availability.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

func TimeOfDayFromPgtype(t pgtype.Time) availability.TimeOfDay {
	return availability.TimeOfDayFromDuration(time.Duration(t.Microseconds) * time.Microsecond)
}

type availabilityRow struct {
	id         uuid.UUID
	providerID uuid.UUID
	day        int16
	createdAt  time.Time
	updatedAt  time.Time
}
