package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/salon-booking/internal/availability"
	"github.com/iliyamo/salon-booking/internal/model"
)

// Catalog resolves the records a booking request references. The
// repository layer implements it; tests supply in-memory fakes.
type Catalog interface {
	BusinessByID(ctx context.Context, id uint64) (*model.Business, error)
	StaffByID(ctx context.Context, id uint64) (*model.Staff, error)
	ServiceByID(ctx context.Context, id uint64) (*model.Service, error)
}

// ScheduleSource reads a staff member's recurring weekly hours and
// the time-off entries intersecting a window.
type ScheduleSource interface {
	WeeklyHours(ctx context.Context, staffID uint64) ([]model.WorkingHours, error)
	TimeOffBetween(ctx context.Context, staffID uint64, from, to time.Time) ([]model.TimeOff, error)
}

// LedgerReader is the read-only view over committed appointments
// used for slot generation and conflict pre-checks. Only live
// appointments are returned; cancelled-like statuses never block.
type LedgerReader interface {
	LiveForStaff(ctx context.Context, staffID uint64, from, to time.Time) ([]model.Appointment, error)
}

// AppointmentStore commits appointments. Both methods must re-check
// conflicts inside the same transaction that writes, serialized per
// staff member, and return ErrSlotNoLongerAvailable when a
// conflicting live appointment exists at commit time.
type AppointmentStore interface {
	// BookAtomic inserts the appointment and returns its new ID.
	BookAtomic(ctx context.Context, appt *model.Appointment) (uint64, error)
	// RescheduleAtomic marks the previous appointment RESCHEDULED
	// (guarded on its current status) and inserts the replacement in
	// one transaction, returning the replacement's ID.
	RescheduleAtomic(ctx context.Context, prev *model.Appointment, replacement *model.Appointment) (uint64, error)
}

// Request carries one booking attempt. StartsAt is a UTC instant;
// the orchestrator converts it into the business's local day to
// resolve working hours.
type Request struct {
	ClientID  uint64
	StaffID   uint64
	ServiceID uint64
	StartsAt  time.Time
	Source    string
	Notes     *string
}

// Orchestrator validates booking requests end-to-end and commits
// them atomically. Validation always runs against the current
// ledger, never a cached view: the availability a client saw is
// advisory until the commit succeeds.
type Orchestrator struct {
	catalog  Catalog
	schedule ScheduleSource
	ledger   LedgerReader
	store    AppointmentStore
	events   EventPublisher
	cache    AvailabilityInvalidator
	step     time.Duration
	now      func() time.Time
}

// NewOrchestrator wires an Orchestrator. step falls back to the
// default granularity when zero; events and cache may be nil.
func NewOrchestrator(catalog Catalog, schedule ScheduleSource, ledger LedgerReader, store AppointmentStore, events EventPublisher, cache AvailabilityInvalidator, step time.Duration) *Orchestrator {
	if step <= 0 {
		step = availability.DefaultStep
	}
	return &Orchestrator{
		catalog:  catalog,
		schedule: schedule,
		ledger:   ledger,
		store:    store,
		events:   events,
		cache:    cache,
		step:     step,
		now:      time.Now,
	}
}

// RequestBooking validates req and commits a new BOOKED appointment.
// The requested start must be one of the currently bookable slots
// for the staff member and service; anything else fails with
// ErrSlotNoLongerAvailable so the caller re-queries availability.
func (o *Orchestrator) RequestBooking(ctx context.Context, req Request) (*model.Appointment, error) {
	svc, err := o.catalog.ServiceByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}
	staff, err := o.catalog.StaffByID(ctx, req.StaffID)
	if err != nil {
		return nil, err
	}
	if !staff.IsActive {
		return nil, ErrStaffInactive
	}
	if staff.BusinessID != svc.BusinessID {
		return nil, ErrCatalogMismatch
	}
	loc, err := o.businessLocation(ctx, staff.BusinessID)
	if err != nil {
		return nil, err
	}
	if !req.StartsAt.After(o.now()) {
		return nil, ErrStartInPast
	}

	duration := time.Duration(svc.DurationMin) * time.Minute
	pre := time.Duration(svc.PreBufferMin) * time.Minute
	post := time.Duration(svc.PostBufferMin) * time.Minute

	ok, err := o.slotStillOpen(ctx, staff, loc, req.StartsAt, duration, pre, post, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSlotNoLongerAvailable
	}

	source := req.Source
	if source == "" {
		source = "WEB"
	}
	appt := &model.Appointment{
		BusinessID:    staff.BusinessID,
		ClientID:      req.ClientID,
		StaffID:       staff.ID,
		ServiceID:     svc.ID,
		StartsAt:      req.StartsAt.UTC(),
		EndsAt:        req.StartsAt.UTC().Add(duration),
		Status:        model.StatusBooked,
		Source:        source,
		Notes:         req.Notes,
		PriceCents:    svc.PriceCents,
		DurationMin:   svc.DurationMin,
		PreBufferMin:  svc.PreBufferMin,
		PostBufferMin: svc.PostBufferMin,
	}
	id, err := o.store.BookAtomic(ctx, appt)
	if err != nil {
		return nil, err
	}
	appt.ID = id
	o.afterCommit(ctx, appt, loc, nil)
	return appt, nil
}

// Reschedule books a replacement appointment for prev at newStart
// and marks prev RESCHEDULED in the same transaction. Only BOOKED
// and CONFIRMED appointments may be rescheduled; the replacement
// keeps prev's service snapshot so the price agreed at booking time
// survives. prev's own interval is ignored during validation since
// it stops blocking the calendar the moment the swap commits.
func (o *Orchestrator) Reschedule(ctx context.Context, prev *model.Appointment, newStart time.Time) (*model.Appointment, error) {
	if !CanTransition(prev.Status, model.StatusRescheduled) {
		return nil, &InvalidTransitionError{From: prev.Status, To: model.StatusRescheduled}
	}
	if !newStart.After(o.now()) {
		return nil, ErrStartInPast
	}
	staff, err := o.catalog.StaffByID(ctx, prev.StaffID)
	if err != nil {
		return nil, err
	}
	loc, err := o.businessLocation(ctx, staff.BusinessID)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(prev.DurationMin) * time.Minute
	pre := time.Duration(prev.PreBufferMin) * time.Minute
	post := time.Duration(prev.PostBufferMin) * time.Minute

	ok, err := o.slotStillOpen(ctx, staff, loc, newStart, duration, pre, post, prev.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSlotNoLongerAvailable
	}

	replacement := &model.Appointment{
		BusinessID:    prev.BusinessID,
		ClientID:      prev.ClientID,
		StaffID:       prev.StaffID,
		ServiceID:     prev.ServiceID,
		StartsAt:      newStart.UTC(),
		EndsAt:        newStart.UTC().Add(duration),
		Status:        model.StatusBooked,
		Source:        prev.Source,
		Notes:         prev.Notes,
		DepositPaid:   prev.DepositPaid,
		PriceCents:    prev.PriceCents,
		DurationMin:   prev.DurationMin,
		PreBufferMin:  prev.PreBufferMin,
		PostBufferMin: prev.PostBufferMin,
	}
	id, err := o.store.RescheduleAtomic(ctx, prev, replacement)
	if err != nil {
		return nil, err
	}
	replacement.ID = id
	from := prev.Status
	prev.Status = model.StatusRescheduled
	o.afterCommit(ctx, replacement, loc, func() {
		if o.events != nil {
			if err := o.events.AppointmentStatusChanged(prev, from); err != nil {
				log.Printf("booking: publish reschedule of appointment %d failed: %v", prev.ID, err)
			}
		}
		// The freed slot may be on a different day than the replacement.
		if o.cache != nil {
			o.cache.InvalidateStaffDay(ctx, prev.StaffID, prev.StartsAt.In(loc).Format("2006-01-02"))
		}
	})
	return replacement, nil
}

// businessLocation loads the business and resolves its timezone.
// Deactivated businesses take no new commits, so deactivation is
// surfaced here on both the booking and reschedule paths.
func (o *Orchestrator) businessLocation(ctx context.Context, businessID uint64) (*time.Location, error) {
	biz, err := o.catalog.BusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !biz.IsActive {
		return nil, ErrBusinessInactive
	}
	return time.LoadLocation(biz.Timezone)
}

// slotStillOpen recomputes the bookable slots for the staff member's
// local day and reports whether start names one of them. excludeID
// drops one appointment from the ledger view, used when that
// appointment is being superseded in the same commit.
func (o *Orchestrator) slotStillOpen(ctx context.Context, staff *model.Staff, loc *time.Location, start time.Time, duration, pre, post time.Duration, excludeID uint64) (bool, error) {
	local := start.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	week, err := o.schedule.WeeklyHours(ctx, staff.ID)
	if err != nil {
		return false, err
	}
	timeOff, err := o.schedule.TimeOffBetween(ctx, staff.ID, dayStart, dayEnd)
	if err != nil {
		return false, err
	}
	open, err := availability.DayHours(week, timeOff, dayStart, loc)
	if err != nil {
		if errors.Is(err, availability.ErrScheduleNotFound) {
			return false, nil
		}
		return false, err
	}

	live, err := o.ledger.LiveForStaff(ctx, staff.ID, dayStart, dayEnd)
	if err != nil {
		return false, err
	}
	// Two live appointments overlapping each other means a past commit
	// bypassed the conflict check. Log loudly; the booking in flight is
	// still judged against both.
	for i := range live {
		for j := i + 1; j < len(live); j++ {
			if live[i].StartsAt.Before(live[j].EndsAt) && live[j].StartsAt.Before(live[i].EndsAt) {
				log.Printf("booking: %v", &InvariantViolationError{
					StaffID: staff.ID,
					Reason:  fmt.Sprintf("live appointments %d and %d overlap", live[i].ID, live[j].ID),
				})
			}
		}
	}
	busy := make([]availability.Busy, 0, len(live)+len(timeOff))
	for _, a := range live {
		if a.ID == excludeID {
			continue
		}
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

	for _, slot := range availability.Bookable(staff.ID, open, busy, duration, pre, post, o.step) {
		if slot.StartsAt.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

// afterCommit runs the post-commit hooks shared by booking and
// rescheduling: publish the booked event, run any extra hook, then
// drop the cached availability for the staff member's day. The day
// key is the business-local date, matching how the availability
// handler caches slot lists. Failures are logged only; the commit
// already happened.
func (o *Orchestrator) afterCommit(ctx context.Context, appt *model.Appointment, loc *time.Location, extra func()) {
	if o.events != nil {
		if err := o.events.AppointmentBooked(appt); err != nil {
			log.Printf("booking: publish booked event for appointment %d failed: %v", appt.ID, err)
		}
	}
	if extra != nil {
		extra()
	}
	if o.cache != nil {
		o.cache.InvalidateStaffDay(ctx, appt.StaffID, appt.StartsAt.In(loc).Format("2006-01-02"))
	}
}
