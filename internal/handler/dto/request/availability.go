package request

import (
	"service-marketplace/internal/usecase/commands"
)

type AvailabilityRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

func (r AvailabilityRequest) ToInput() commands.AvailabilityInput {
	return commands.AvailabilityInput{
		DayOfWeek: *r.DayOfWeek,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}
