package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// ClientAppointmentHandler is the customer-facing booking surface:
// request a slot, list own appointments, cancel, reschedule.
type ClientAppointmentHandler struct {
	Appointments *repository.AppointmentRepo
	Orchestrator *booking.Orchestrator
	Lifecycle    *booking.Lifecycle
}

func NewClientAppointmentHandler(a *repository.AppointmentRepo, orc *booking.Orchestrator, lc *booking.Lifecycle) *ClientAppointmentHandler {
	return &ClientAppointmentHandler{Appointments: a, Orchestrator: orc, Lifecycle: lc}
}

type bookReq struct {
	StaffID   uint64    `json:"staff_id"`
	ServiceID uint64    `json:"service_id"`
	StartsAt  time.Time `json:"starts_at"`
	Source    string    `json:"source"`
	Notes     *string   `json:"notes"`
}

type rescheduleReq struct {
	StartsAt time.Time `json:"starts_at"`
}

type appointmentResp struct {
	ID         uint64    `json:"id"`
	BusinessID uint64    `json:"business_id"`
	StaffID    uint64    `json:"staff_id"`
	ServiceID  uint64    `json:"service_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Status     string    `json:"status"`
	Source     string    `json:"source"`
	Notes      *string   `json:"notes,omitempty"`
	PriceCents uint32    `json:"price_cents"`
}

func toAppointmentResp(a *model.Appointment) appointmentResp {
	return appointmentResp{
		ID:         a.ID,
		BusinessID: a.BusinessID,
		StaffID:    a.StaffID,
		ServiceID:  a.ServiceID,
		StartsAt:   a.StartsAt,
		EndsAt:     a.EndsAt,
		Status:     string(a.Status),
		Source:     a.Source,
		Notes:      a.Notes,
		PriceCents: a.PriceCents,
	}
}

// bookingError maps orchestrator errors onto HTTP responses shared by
// Book and Reschedule.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrSlotNoLongerAvailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot no longer available"})
	case errors.Is(err, booking.ErrStartInPast):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "starts_at must be in the future"})
	case errors.Is(err, booking.ErrServiceInactive):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "service is not bookable"})
	case errors.Is(err, booking.ErrStaffInactive):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "staff member is not bookable"})
	case errors.Is(err, booking.ErrCatalogMismatch):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "staff and service do not match"})
	case errors.Is(err, booking.ErrBusinessInactive):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "business is not bookable"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "staff or service not found"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store timeout", "retryable": true})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
}

// transitionError maps lifecycle transition failures shared by the
// client and owner surfaces. Both a disallowed edge and a lost
// concurrent guard are state conflicts, so both answer 409; the
// disallowed edge carries the rejected edge so callers can react
// without parsing prose. Reports false when err is neither.
func transitionError(c echo.Context, err error) (bool, error) {
	var inv *booking.InvalidTransitionError
	switch {
	case errors.As(err, &inv):
		return true, c.JSON(http.StatusConflict, echo.Map{
			"error": "invalid_transition",
			"from":  string(inv.From),
			"to":    string(inv.To),
		})
	case errors.Is(err, booking.ErrTransitionConflict):
		return true, c.JSON(http.StatusConflict, echo.Map{"error": "appointment changed, reload and retry"})
	}
	return false, nil
}

// Book requests an appointment at a concrete slot start.
func (h *ClientAppointmentHandler) Book(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StaffID == 0 || req.ServiceID == 0 || req.StartsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staff_id, service_id and starts_at required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	appt, err := h.Orchestrator.RequestBooking(ctx, booking.Request{
		ClientID:  clientID,
		StaffID:   req.StaffID,
		ServiceID: req.ServiceID,
		StartsAt:  req.StartsAt,
		Source:    strings.ToUpper(strings.TrimSpace(req.Source)),
		Notes:     req.Notes,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, toAppointmentResp(appt))
}

// Get returns one of the client's own appointments.
func (h *ClientAppointmentHandler) Get(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	appt, err := h.Appointments.GetByIDForClient(ctx, id, clientID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your appointment"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAppointmentResp(appt))
}

// List returns the client's own appointments, newest first.
func (h *ClientAppointmentHandler) List(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Appointments.ListByClient(ctx, clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// Cancel moves the client's own appointment to CANCELLED.
func (h *ClientAppointmentHandler) Cancel(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	appt, err := h.Appointments.GetByIDForClient(ctx, id, clientID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your appointment"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Lifecycle.Transition(ctx, appt, model.StatusCancelled); err != nil {
		if handled, resp := transitionError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, toAppointmentResp(appt))
}

// Reschedule books the same service at a new start and marks the
// current appointment RESCHEDULED. The replacement keeps the price
// agreed at the original booking.
func (h *ClientAppointmentHandler) Reschedule(c echo.Context) error {
	clientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req rescheduleReq
	if err := c.Bind(&req); err != nil || req.StartsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	prev, err := h.Appointments.GetByIDForClient(ctx, id, clientID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your appointment"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	replacement, err := h.Orchestrator.Reschedule(ctx, prev, req.StartsAt)
	if err != nil {
		if handled, resp := transitionError(c, err); handled {
			return resp
		}
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, toAppointmentResp(replacement))
}
