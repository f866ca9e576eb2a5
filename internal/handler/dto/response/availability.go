package response

import (
	"time"

	"service-marketplace/internal/domain/availability"
	"service-marketplace/internal/usecase/queries"
)

type AvailabilityResponse struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	DayOfWeek  int       `json:"day_of_week"`
	DayName    string    `json:"day_name"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func FromAvailabilityView(v *queries.AvailabilityView) *AvailabilityResponse {
	return &AvailabilityResponse{
		ID:         v.ID.String(),
		ProviderID: v.ProviderID.String(),
		DayOfWeek:  v.DayOfWeek,
		DayName:    v.DayName,
		StartTime:  v.StartTime,
		EndTime:    v.EndTime,
		UpdatedAt:  v.UpdatedAt,
	}
}

func FromAvailability(a *availability.Availability) *AvailabilityResponse {
	return FromAvailabilityView(queries.NewAvailabilityView(a))
}

func FromAvailabilityViews(views []*queries.AvailabilityView) []*AvailabilityResponse {
	res := make([]*AvailabilityResponse, len(views))
	for i, v := range views {
		res[i] = FromAvailabilityView(v)
	}
	return res
}
