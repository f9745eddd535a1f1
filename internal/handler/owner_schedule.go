package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// OwnerScheduleHandler manages weekly working hours and time-off for
// staff members.
type OwnerScheduleHandler struct {
	Schedules *repository.ScheduleRepo
}

func NewOwnerScheduleHandler(s *repository.ScheduleRepo) *OwnerScheduleHandler {
	return &OwnerScheduleHandler{Schedules: s}
}

type workingHoursEntry struct {
	Weekday    uint8   `json:"weekday"` // 0=Sunday .. 6=Saturday
	IsWorking  bool    `json:"is_working"`
	StartTime  string  `json:"start_time"` // "HH:MM"
	EndTime    string  `json:"end_time"`   // "HH:MM"
	BreakStart *string `json:"break_start"`
	BreakEnd   *string `json:"break_end"`
}

type replaceWeekReq struct {
	Week []workingHoursEntry `json:"week"`
}

type timeOffReq struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Reason   *string   `json:"reason"`
}

type timeOffResp struct {
	ID       uint64    `json:"id"`
	StaffID  uint64    `json:"staff_id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Reason   *string   `json:"reason,omitempty"`
}

func validWallClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func (e *workingHoursEntry) validate() string {
	if e.Weekday > 6 {
		return "weekday must be 0..6"
	}
	if !e.IsWorking {
		return ""
	}
	if !validWallClock(e.StartTime) || !validWallClock(e.EndTime) {
		return "start_time/end_time must be HH:MM"
	}
	if e.EndTime <= e.StartTime {
		return "end_time must be after start_time"
	}
	if (e.BreakStart == nil) != (e.BreakEnd == nil) {
		return "break_start and break_end go together"
	}
	if e.BreakStart != nil {
		if !validWallClock(*e.BreakStart) || !validWallClock(*e.BreakEnd) {
			return "break_start/break_end must be HH:MM"
		}
		if *e.BreakEnd <= *e.BreakStart {
			return "break_end must be after break_start"
		}
	}
	return ""
}

// ReplaceWeek swaps a staff member's entire weekly schedule in one
// call. Days omitted from the payload become non-working days.
func (h *OwnerScheduleHandler) ReplaceWeek(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	staffID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req replaceWeekReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	seen := map[uint8]bool{}
	week := make([]model.WorkingHours, 0, len(req.Week))
	for i := range req.Week {
		e := &req.Week[i]
		if msg := e.validate(); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
		if seen[e.Weekday] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate weekday"})
		}
		seen[e.Weekday] = true
		week = append(week, model.WorkingHours{
			StaffID:    staffID,
			Weekday:    e.Weekday,
			IsWorking:  e.IsWorking,
			StartTime:  e.StartTime,
			EndTime:    e.EndTime,
			BreakStart: e.BreakStart,
			BreakEnd:   e.BreakEnd,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Schedules.ReplaceWeek(ctx, staffID, ownerID, week); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your staff"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save schedule failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// GetWeek returns the staff member's current weekly schedule.
func (h *OwnerScheduleHandler) GetWeek(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	staffID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	week, err := h.Schedules.WeeklyHours(ctx, staffID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]workingHoursEntry, 0, len(week))
	for i := range week {
		w := &week[i]
		out = append(out, workingHoursEntry{
			Weekday:    w.Weekday,
			IsWorking:  w.IsWorking,
			StartTime:  w.StartTime,
			EndTime:    w.EndTime,
			BreakStart: w.BreakStart,
			BreakEnd:   w.BreakEnd,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"week": out})
}

// AddTimeOff blocks a date-time range for a staff member.
func (h *OwnerScheduleHandler) AddTimeOff(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	staffID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req timeOffReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() || !req.EndsAt.After(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	off := &model.TimeOff{
		StaffID:  staffID,
		StartsAt: req.StartsAt.UTC(),
		EndsAt:   req.EndsAt.UTC(),
		Reason:   req.Reason,
	}
	if err := h.Schedules.AddTimeOff(ctx, off, ownerID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your staff"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save time off failed"})
	}
	return c.JSON(http.StatusCreated, timeOffResp{
		ID: off.ID, StaffID: off.StaffID,
		StartsAt: off.StartsAt, EndsAt: off.EndsAt, Reason: off.Reason,
	})
}

// ListTimeOff returns upcoming time-off entries for a staff member.
func (h *OwnerScheduleHandler) ListTimeOff(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	staffID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Schedules.ListUpcomingTimeOff(ctx, staffID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]timeOffResp, 0, len(list))
	for i := range list {
		o := &list[i]
		out = append(out, timeOffResp{
			ID: o.ID, StaffID: o.StaffID,
			StartsAt: o.StartsAt, EndsAt: o.EndsAt, Reason: o.Reason,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteTimeOff removes a time-off entry.
func (h *OwnerScheduleHandler) DeleteTimeOff(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Schedules.DeleteTimeOff(ctx, id, ownerID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "time off not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your staff"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
