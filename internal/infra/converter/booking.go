package converter

import (
	"encoding/json"
	"fmt"
	"time"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// BookingColumns is the column order ScanBooking expects.
var BookingColumns = []string{
	"id",
	"client_id",
	"provider_id",
	"provider_service_id",
	"scheduled_at",
	"duration",
	"price",
	"currency",
	"location",
	"notes",
	"status",
	"cancellation_reason",
	"rejection_reason",
	"completed_at",
	"provider_notes",
	"created_at",
	"updated_at",
}

func ScanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		p        booking.ReconstructParams
		price    pgtype.Numeric
		currency string
		location []byte
		status   string
	)
	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.ProviderID,
		&p.ProviderServiceID,
		&p.ScheduledAt,
		&p.DurationMinutes,
		&price,
		&currency,
		&location,
		&p.Notes,
		&status,
		&p.CancellationReason,
		&p.RejectionReason,
		&p.CompletedAt,
		&p.ProviderNotes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Price, err = pgconv.DecimalFromNumeric(price); err != nil {
		return nil, err
	}
	p.Currency = currency
	p.Status = booking.Status(status)
	if p.Location, err = LocationFromJSON(location); err != nil {
		return nil, err
	}

	return booking.ReconstructBooking(p), nil
}

func ScanBookings(rows pgx.Rows) ([]*booking.Booking, error) {
	defer rows.Close()
	var out []*booking.Booking
	for rows.Next() {
		b, err := ScanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BookingToInfra maps a booking to its insert/update column values.
func BookingToInfra(b *booking.Booking) (map[string]any, error) {
	location, err := LocationToJSON(b.Location())
	if err != nil {
		return nil, err
	}
	w := b.Window()
	return map[string]any{
		"id":                  b.ID(),
		"client_id":           b.ClientID(),
		"provider_id":         b.ProviderID(),
		"provider_service_id": b.ProviderServiceID(),
		"scheduled_at":        w.Start(),
		"duration":            w.DurationMinutes(),
		"ends_at":             w.End(),
		"price":               pgconv.DecimalToNumeric(b.Price().Amount()),
		"currency":            b.Price().Currency(),
		"location":            location,
		"notes":               b.Notes().String(),
		"status":              b.Status().String(),
		"cancellation_reason": b.CancellationReason(),
		"rejection_reason":    b.RejectionReason(),
		"completed_at":        timePtr(b.CompletedAt()),
		"provider_notes":      b.ProviderNotes().String(),
		"created_at":          b.CreatedAt(),
		"updated_at":          b.UpdatedAt(),
	}, nil
}

// LocationToJSON returns nil for a missing location so the column is stored as NULL.
func LocationToJSON(l *booking.Location) ([]byte, error) {
	if l == nil {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal location: %w", err)
	}
	return data, nil
}

func LocationFromJSON(data []byte) (*booking.Location, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var l booking.Location
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("unmarshal location: %w", err)
	}
	return &l, nil
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
