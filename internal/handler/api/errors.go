package api

import (
	"errors"
	"net/http"
	"time"

	"service-marketplace/internal/domain/availability"
	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/handler/httperr"
	"service-marketplace/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ConflictDetail struct {
	BookingID   *uuid.UUID `json:"booking_id,omitempty"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	EndsAt      time.Time  `json:"ends_at"`
}

type TransitionDetail struct {
	From booking.Status `json:"from"`
	To   booking.Status `json:"to"`
}

type OverlapDetail struct {
	SlotID    uuid.UUID `json:"slot_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

type category struct {
	target error
	status int
	code   string
}

// Checked in order; the first category err belongs to wins.
var categories = []category{
	{errs.ErrNotFound, http.StatusNotFound, httperr.CodeNotFound},
	{errs.ErrUnavailable, http.StatusUnprocessableEntity, httperr.CodeUnavailable},
	{errs.ErrLeadTime, http.StatusUnprocessableEntity, httperr.CodeLeadTime},
	{errs.ErrDuration, http.StatusUnprocessableEntity, httperr.CodeDuration},
	{errs.ErrConflict, http.StatusConflict, httperr.CodeConflict},
	{errs.ErrInvalidTransition, http.StatusConflict, httperr.CodeInvalidTransition},
	{errs.ErrForbidden, http.StatusForbidden, httperr.CodeForbidden},
	{errs.ErrValidation, http.StatusUnprocessableEntity, httperr.CodeValidation},
}

// abortWithDomainError translates a usecase error into the HTTP error envelope.
func abortWithDomainError(c *gin.Context, err error) {
	if ce, ok := booking.AsConflict(err); ok {
		detail := ConflictDetail{ScheduledAt: ce.Start, EndsAt: ce.End}
		if ce.BookingID != uuid.Nil {
			id := ce.BookingID
			detail.BookingID = &id
		}
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeConflict, "Requested time overlaps an existing booking", detail)
		return
	}

	var te *booking.TransitionError
	if errors.As(err, &te) {
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeInvalidTransition, err.Error(), TransitionDetail{From: te.From, To: te.To})
		return
	}

	if oe, ok := availability.AsOverlap(err); ok {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeValidation, "Availability overlaps an existing slot", OverlapDetail{
			SlotID:    oe.SlotID,
			DayOfWeek: oe.Day.Int(),
			StartTime: oe.Start.String(),
			EndTime:   oe.End.String(),
		})
		return
	}

	var ve *booking.ValidationError
	if errors.As(err, &ve) {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeValidation, "Validation failed", ve.Fields)
		return
	}

	for _, cat := range categories {
		if errs.Is(err, cat.target) {
			httperr.AbortWithError(c, cat.status, err, cat.code, err.Error(), nil)
			return
		}
	}

	httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
}

func abortWithBindError(c *gin.Context, err error) {
	httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Invalid request", nil)
}

func abortUnauthorized(c *gin.Context) {
	httperr.AbortWithError(c, http.StatusUnauthorized, nil, httperr.CodeUnauthorized, "Unauthorized", nil)
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
