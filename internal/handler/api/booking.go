package api

import (
	"net/http"
	"strconv"

	"service-marketplace/internal/domain/booking"
	reqdto "service-marketplace/internal/handler/dto/request"
	resdto "service-marketplace/internal/handler/dto/response"
	"service-marketplace/internal/handler/httperr"
	"service-marketplace/internal/handler/middleware"
	"service-marketplace/internal/usecase"
	"service-marketplace/internal/usecase/commands"
	"service-marketplace/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderIdempotencyKey     = "Idempotency-Key"
	HeaderIdempotentReplayed = "Idempotent-Replayed"
)

type BookingHandler struct {
	cmds     commands.BookingCommands
	q        queries.BookingQueries
	notifier usecase.EventNotifier
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries, notifier usecase.EventNotifier) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q, notifier: notifier}
}

// @Summary Create booking
// @Description Book a provider service. Repeating a request with the same Idempotency-Key replays the original booking.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body reqdto.CreateBookingRequest true "Create booking request"
// @Success 201 {object} resdto.BookingResponse
// @Success 200 {object} resdto.BookingResponse "Idempotent replay"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	clientID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	result, err := h.cmds.Create(c.Request.Context(), req.ToInput(clientID, c.GetHeader(HeaderIdempotencyKey)))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	h.notifier.Notify(c.Request.Context(), result.Event)

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
		c.Header(HeaderIdempotentReplayed, "true")
	}
	c.JSON(status, resdto.FromBookingView(queries.NewBookingView(result.Booking, clientID)))
}

// @Summary Check availability
// @Description Report whether a provider service can be booked at the given time. Lead time is not checked.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CheckAvailabilityRequest true "Availability check request"
// @Success 200 {object} resdto.AvailabilityCheckResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/bookings/check [post]
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var req reqdto.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	result, err := h.cmds.CheckAvailability(c.Request.Context(), req.ToInput())
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityCheck(result))
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), actorID, id)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List bookings
// @Description List the caller's bookings, newest appointment first, with keyset pagination
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param as query string false "client or provider"
// @Param status query string false "Booking status"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	var filter queries.BookingFilter
	switch as := c.Query("as"); as {
	case "":
	case string(booking.PartyClient), string(booking.PartyProvider):
		party := booking.Party(as)
		filter.As = &party
	default:
		httperr.AbortWithError(c, http.StatusBadRequest, nil, httperr.CodeValidation, "as must be client or provider", nil)
		return
	}
	if v := c.Query("status"); v != "" {
		status, err := booking.ParseStatus(v)
		if err != nil {
			abortWithDomainError(c, err)
			return
		}
		filter.Status = &status
	}

	limit := queries.DefaultListLimit
	if v := c.Query("limit"); v != "" {
		iv, err := strconv.Atoi(v)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "limit must be an integer", nil)
			return
		}
		limit = queries.ValidateLimit(iv)
	}
	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		cursor = &queries.Cursor{After: after}
	}

	views, next, err := h.q.List(c.Request.Context(), actorID, filter, cursor, limit)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingViews(views, next))
}

// @Summary Update booking
// @Description Partially update a booking. Status, schedule and detail changes are applied together or not at all.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.UpdateBookingRequest true "Update booking request"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/bookings/{id} [patch]
func (h *BookingHandler) Update(c *gin.Context) {
	actorID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	in, err := req.ToInput(actorID, id)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	h.respond(c, actorID)(h.cmds.Update(c.Request.Context(), in))
}

// @Summary Change booking status
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.ChangeStatusRequest true "Status change request"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/bookings/{id}/status [patch]
func (h *BookingHandler) ChangeStatus(c *gin.Context) {
	actorID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req reqdto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	status, err := booking.ParseStatus(req.Status)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	h.respond(c, actorID)(h.cmds.ChangeStatus(c.Request.Context(), actorID, id, status, req.Reason))
}

// @Summary Cancel booking
// @Description Clients must cancel more than 24 hours before the appointment.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	actorID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req reqdto.CancelBookingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithBindError(c, err)
			return
		}
	}
	h.respond(c, actorID)(h.cmds.Cancel(c.Request.Context(), actorID, id, req.Reason))
}

// @Summary Reschedule booking
// @Description Clients may move a pending or confirmed booking more than 12 hours before it starts.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.RescheduleBookingRequest true "Reschedule request"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/bookings/{id}/reschedule [post]
func (h *BookingHandler) Reschedule(c *gin.Context) {
	actorID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req reqdto.RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	h.respond(c, actorID)(h.cmds.Reschedule(c.Request.Context(), actorID, id, req.ScheduledAt, req.Duration))
}

// @Summary Delete booking
// @Description Clients may delete their own booking while it is not in a terminal state.
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204 "No Content"
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	actorID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	if err := h.cmds.Delete(c.Request.Context(), actorID, id); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) actorAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		abortUnauthorized(c)
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return actorID, id, true
}

// respond writes a mutation result and forwards its event to the notifier.
func (h *BookingHandler) respond(c *gin.Context, actorID uuid.UUID) func(*commands.BookingResult, error) {
	return func(result *commands.BookingResult, err error) {
		if err != nil {
			abortWithDomainError(c, err)
			return
		}
		h.notifier.Notify(c.Request.Context(), result.Event)
		c.JSON(http.StatusOK, resdto.FromBookingView(queries.NewBookingView(result.Booking, actorID)))
	}
}
