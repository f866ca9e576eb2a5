//go:build unit || e2e

package builder

import (
	"service-marketplace/internal/domain/availability"
	"service-marketplace/internal/handler/dto/request"

	"github.com/google/uuid"
)

type AvailabilityBuilder struct {
	ProviderID uuid.UUID
	DayOfWeek  int
	StartTime  string
	EndTime    string
}

func NewAvailabilityBuilder() *AvailabilityBuilder {
	return &AvailabilityBuilder{
		ProviderID: uuid.New(),
		DayOfWeek:  1,
		StartTime:  "09:00",
		EndTime:    "17:00",
	}
}

func (b *AvailabilityBuilder) With(mutate func(*AvailabilityBuilder)) *AvailabilityBuilder {
	mutate(b)
	return b
}

// BuildDomain panics on invalid builder values; tests only build valid slots with it.
func (b *AvailabilityBuilder) BuildDomain() *availability.Availability {
	day, err := availability.NewDayOfWeek(b.DayOfWeek)
	if err != nil {
		panic(err)
	}
	start, err := availability.ParseTimeOfDay(b.StartTime)
	if err != nil {
		panic(err)
	}
	end, err := availability.ParseTimeOfDay(b.EndTime)
	if err != nil {
		panic(err)
	}
	a, err := availability.NewAvailability(b.ProviderID, day, start, end, DefaultNow)
	if err != nil {
		panic(err)
	}
	return a
}

func (b *AvailabilityBuilder) BuildRequestDTO() request.AvailabilityRequest {
	day := b.DayOfWeek
	return request.AvailabilityRequest{
		DayOfWeek: &day,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}
