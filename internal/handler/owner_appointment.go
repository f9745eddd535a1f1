package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// OwnerAppointmentHandler gives owners a day agenda per business and
// drives the appointment lifecycle (confirm, check-in, complete, ...).
type OwnerAppointmentHandler struct {
	Appointments *repository.AppointmentRepo
	Businesses   *repository.BusinessRepo
	Lifecycle    *booking.Lifecycle
}

func NewOwnerAppointmentHandler(a *repository.AppointmentRepo, b *repository.BusinessRepo, lc *booking.Lifecycle) *OwnerAppointmentHandler {
	return &OwnerAppointmentHandler{Appointments: a, Businesses: b, Lifecycle: lc}
}

// Agenda returns all appointments of a business for one local day,
// ordered by staff and start time. The date query parameter is
// interpreted in the business's timezone; it defaults to today.
func (h *OwnerAppointmentHandler) Agenda(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	businessID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	biz, err := h.Businesses.GetByID(ctx, businessID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	loc, err := time.LoadLocation(biz.Timezone)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalid business timezone"})
	}

	var day time.Time
	if raw := c.QueryParam("date"); raw != "" {
		day, err = parseDay(raw, loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
	} else {
		now := time.Now().In(loc)
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	}
	from := day.UTC()
	to := day.AddDate(0, 0, 1).UTC()

	list, err := h.Appointments.ListForBusinessDay(ctx, businessID, ownerID, from, to)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your business"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if raw := c.QueryParam("staff_id"); raw != "" {
		staffID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid staff_id"})
		}
		filtered := list[:0]
		for _, d := range list {
			if d.StaffID == staffID {
				filtered = append(filtered, d)
			}
		}
		list = filtered
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":         day.Format("2006-01-02"),
		"appointments": list,
	})
}

type statusReq struct {
	Status string `json:"status"`
}

// ownerStatuses lists the transitions an owner may request through
// the API. BOOKED/RESCHEDULED are system-set, never requested.
var ownerStatuses = map[model.AppointmentStatus]bool{
	model.StatusConfirmed: true,
	model.StatusCheckedIn: true,
	model.StatusInService: true,
	model.StatusCompleted: true,
	model.StatusCancelled: true,
	model.StatusNoShow:    true,
}

// UpdateStatus moves an appointment along its lifecycle.
func (h *OwnerAppointmentHandler) UpdateStatus(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	to := model.AppointmentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !ownerStatuses[to] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown or unrequestable status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	appt, err := h.Appointments.GetByIDForOwner(ctx, id, ownerID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your appointment"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Lifecycle.Transition(ctx, appt, to); err != nil {
		if handled, resp := transitionError(c, err); handled {
			return resp
		}
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":     appt.ID,
		"status": string(appt.Status),
	})
}
