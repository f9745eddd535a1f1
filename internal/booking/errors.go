// Package booking implements the commit side of scheduling: the
// orchestrator that validates and atomically books appointments, and
// the lifecycle state machine that governs every later status change.
// Errors declared here separate the three failure classes handlers
// care about: validation (reject, do not retry), conflict (re-query
// availability and retry explicitly), and invariant violations
// (a bug, logged loudly).
package booking

import (
	"errors"
	"fmt"

	"github.com/iliyamo/salon-booking/internal/model"
)

// ErrSlotNoLongerAvailable is returned when a requested slot fails
// re-validation or when a conflicting appointment was committed
// between validation and commit. The caller must fetch fresh
// availability and pick again; the orchestrator never substitutes a
// different slot on its own. Handlers translate this into HTTP 409.
var ErrSlotNoLongerAvailable = errors.New("slot no longer available")

// ErrStartInPast is returned when the requested start time is not in
// the future. Validation failure, HTTP 400.
var ErrStartInPast = errors.New("appointment start must be in the future")

// ErrServiceInactive is returned when the requested service exists
// but is no longer offered.
var ErrServiceInactive = errors.New("service is not active")

// ErrStaffInactive is returned when the requested staff member
// exists but no longer takes bookings.
var ErrStaffInactive = errors.New("staff member is not active")

// ErrBusinessInactive is returned when the business behind the
// requested staff member is deactivated. The browse and availability
// surfaces hide such businesses; the commit path refuses them too so
// a remembered slot cannot be booked after deactivation.
var ErrBusinessInactive = errors.New("business is not active")

// ErrCatalogMismatch is returned when the requested staff member and
// service belong to different businesses.
var ErrCatalogMismatch = errors.New("staff and service belong to different businesses")

// ErrTransitionConflict is returned when a guarded status update
// matched no row: a concurrent request moved the appointment out of
// the expected status first. Exactly one of two racing transition
// requests can succeed.
var ErrTransitionConflict = errors.New("appointment status changed concurrently")

// InvalidTransitionError reports an attempt to move an appointment
// along an edge that the lifecycle table does not allow. It carries
// both statuses for diagnostics.
type InvalidTransitionError struct {
	From model.AppointmentStatus
	To   model.AppointmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// InvariantViolationError reports a state that correct conflict
// detection should make unreachable, such as two live appointments
// overlapping for the same staff member. It indicates a bug or a
// missed serialization boundary, never a user mistake.
type InvariantViolationError struct {
	StaffID uint64
	Reason  string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("scheduling invariant violated for staff %d: %s", e.StaffID, e.Reason)
}
