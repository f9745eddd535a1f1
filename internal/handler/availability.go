package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/availability"
	"github.com/iliyamo/salon-booking/internal/cache"
	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// AvailabilityHandler computes bookable slots for a staff member,
// service and date. The result is cached briefly in Redis; booking
// commits invalidate the staff member's day so stale slots disappear
// quickly.
type AvailabilityHandler struct {
	Businesses   *repository.BusinessRepo
	Staff        *repository.StaffRepo
	Services     *repository.ServiceRepo
	Schedules    *repository.ScheduleRepo
	Appointments *repository.AppointmentRepo
	Cache        *cache.Availability
	Step         time.Duration
}

func NewAvailabilityHandler(
	b *repository.BusinessRepo,
	st *repository.StaffRepo,
	sv *repository.ServiceRepo,
	sc *repository.ScheduleRepo,
	a *repository.AppointmentRepo,
	av *cache.Availability,
	step time.Duration,
) *AvailabilityHandler {
	if step <= 0 {
		step = availability.DefaultStep
	}
	return &AvailabilityHandler{
		Businesses: b, Staff: st, Services: sv,
		Schedules: sc, Appointments: a, Cache: av, Step: step,
	}
}

func queryID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.QueryParam(name), 10, 64)
}

// Get handles GET /v1/availability?staff_id=&service_id=&date=.
// The date is a calendar day in the business's timezone; returned
// slot times are UTC instants.
func (h *AvailabilityHandler) Get(c echo.Context) error {
	staffID, err := queryID(c, "staff_id")
	if err != nil || staffID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staff_id required"})
	}
	serviceID, err := queryID(c, "service_id")
	if err != nil || serviceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_id required"})
	}
	dateRaw := c.QueryParam("date")
	if dateRaw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	staff, err := h.Staff.GetByID(ctx, staffID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	svc, err := h.Services.GetByID(ctx, serviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if svc.BusinessID != staff.BusinessID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staff and service do not match"})
	}
	biz, err := h.Businesses.GetByID(ctx, staff.BusinessID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !biz.IsActive || !staff.IsActive || !svc.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not bookable"})
	}
	loc, err := time.LoadLocation(biz.Timezone)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalid business timezone"})
	}
	day, err := parseDay(dateRaw, loc)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	dayKey := day.Format("2006-01-02")

	if slots, ok := h.Cache.Get(ctx, staffID, dayKey, serviceID); ok {
		return c.JSON(http.StatusOK, availabilityResp(dayKey, staffID, serviceID, slots))
	}

	slots, err := h.compute(ctx, staff, svc, day, loc)
	if err != nil {
		return availabilityError(c, err, staffID)
	}
	h.Cache.Set(ctx, staffID, dayKey, serviceID, slots)
	return c.JSON(http.StatusOK, availabilityResp(dayKey, staffID, serviceID, slots))
}

// availabilityError maps slot computation failures. A staff member
// with no weekly schedule rows at all is distinct from one who simply
// is not working that day: the latter answers 200 with an empty slot
// list, the former names the missing schedule.
func availabilityError(c echo.Context, err error, staffID uint64) error {
	switch {
	case errors.Is(err, availability.ErrScheduleNotFound):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":    "schedule_not_found",
			"staff_id": staffID,
		})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store timeout", "retryable": true})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability computation failed"})
}

func availabilityResp(day string, staffID, serviceID uint64, slots []model.Slot) echo.Map {
	if slots == nil {
		slots = []model.Slot{}
	}
	return echo.Map{
		"date":       day,
		"staff_id":   staffID,
		"service_id": serviceID,
		"slots":      slots,
	}
}

// compute resolves the staff member's working hours for the day,
// subtracts time off, loads the live appointment ledger and emits the
// surviving grid-aligned slots. Time off enters twice on purpose:
// subtracted from the open hours and again as zero-buffer busy
// entries, so a candidate whose service buffers reach into time off
// is also rejected.
func (h *AvailabilityHandler) compute(ctx context.Context, staff *model.Staff, svc *model.Service, day time.Time, loc *time.Location) ([]model.Slot, error) {
	dayEnd := day.AddDate(0, 0, 1)

	week, err := h.Schedules.WeeklyHours(ctx, staff.ID)
	if err != nil {
		return nil, err
	}
	timeOff, err := h.Schedules.TimeOffBetween(ctx, staff.ID, day, dayEnd)
	if err != nil {
		return nil, err
	}
	open, err := availability.DayHours(week, timeOff, day, loc)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}

	live, err := h.Appointments.LiveForStaff(ctx, staff.ID, day, dayEnd)
	if err != nil {
		return nil, err
	}
	busy := make([]availability.Busy, 0, len(live)+len(timeOff))
	for _, a := range live {
		busy = append(busy, availability.Busy{
			Start: a.StartsAt,
			End:   a.EndsAt,
			Pre:   time.Duration(a.PreBufferMin) * time.Minute,
			Post:  time.Duration(a.PostBufferMin) * time.Minute,
		})
	}
	for _, off := range timeOff {
		busy = append(busy, availability.Busy{Start: off.StartsAt, End: off.EndsAt})
	}

	duration := time.Duration(svc.DurationMin) * time.Minute
	pre := time.Duration(svc.PreBufferMin) * time.Minute
	post := time.Duration(svc.PostBufferMin) * time.Minute
	return availability.Bookable(staff.ID, open, busy, duration, pre, post, h.Step), nil
}
