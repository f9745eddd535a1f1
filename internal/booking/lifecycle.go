package booking

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// transitions is the complete edge table of the appointment state
// machine. Absent keys are terminal states.
var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.StatusBooked: {
		model.StatusConfirmed, model.StatusCheckedIn,
		model.StatusCancelled, model.StatusRescheduled,
	},
	model.StatusConfirmed: {
		model.StatusCheckedIn, model.StatusCancelled,
		model.StatusNoShow, model.StatusRescheduled,
	},
	model.StatusCheckedIn: {
		model.StatusInService, model.StatusNoShow,
	},
	model.StatusInService: {
		model.StatusCompleted,
	},
}

// CanTransition reports whether the lifecycle allows moving an
// appointment from one status directly to another.
func CanTransition(from, to model.AppointmentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// StatusStore persists a guarded status change: the update must only
// apply while the row still holds the expected current status, and
// must return ErrTransitionConflict when it no longer does.
type StatusStore interface {
	TransitionStatus(ctx context.Context, id uint64, from, to model.AppointmentStatus) error
}

// EventPublisher emits lifecycle events for the notification and
// loyalty consumers. Publishing is fire-and-forget: implementations
// report failure through their return value but a failed publish
// never rolls back the transition that triggered it.
type EventPublisher interface {
	AppointmentBooked(appt *model.Appointment) error
	AppointmentStatusChanged(appt *model.Appointment, from model.AppointmentStatus) error
}

// AvailabilityInvalidator drops cached availability responses for a
// staff member's day after the underlying ledger changed.
type AvailabilityInvalidator interface {
	InvalidateStaffDay(ctx context.Context, staffID uint64, day string)
}

// Lifecycle is the single authority over appointment status changes.
// All writes to the status column go through Transition; handlers and
// consumers read derived state but never re-implement the edge rules.
type Lifecycle struct {
	store  StatusStore
	events EventPublisher
	cache  AvailabilityInvalidator
}

// NewLifecycle builds a Lifecycle. events and cache may be nil when
// the broker or Redis is not configured; hooks are then skipped.
func NewLifecycle(store StatusStore, events EventPublisher, cache AvailabilityInvalidator) *Lifecycle {
	return &Lifecycle{store: store, events: events, cache: cache}
}

// Transition moves an appointment to the target status. It checks
// the edge table, persists the change guarded on the current status,
// then runs the side-effect hooks in order: publish the lifecycle
// event, and when the appointment stops blocking its interval
// (COMPLETED, CANCELLED, NO_SHOW, RESCHEDULED) invalidate the cached
// availability for the staff member's day so freed slots are
// recomputed. Hook failures are logged and do not undo the
// transition. On success the appointment's Status field is updated
// in place.
func (l *Lifecycle) Transition(ctx context.Context, appt *model.Appointment, to model.AppointmentStatus) error {
	from := appt.Status
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	if err := l.store.TransitionStatus(ctx, appt.ID, from, to); err != nil {
		return err
	}
	appt.Status = to

	if l.events != nil {
		if err := l.events.AppointmentStatusChanged(appt, from); err != nil {
			log.Printf("lifecycle: publish status change for appointment %d failed: %v", appt.ID, err)
		}
	}
	if l.cache != nil && (to == model.StatusCompleted || !to.IsLive()) {
		// Availability is cached under the business-local date, which
		// the lifecycle does not know. The local date of an instant is
		// at most one calendar day away from its UTC date, so dropping
		// the UTC day and both neighbors always covers the cached key.
		day := appt.StartsAt.UTC()
		for _, d := range []time.Time{day.AddDate(0, 0, -1), day, day.AddDate(0, 0, 1)} {
			l.cache.InvalidateStaffDay(ctx, appt.StaffID, d.Format("2006-01-02"))
		}
	}
	return nil
}
