package model

import "time"

// AppointmentStatus enumerates the finite lifecycle states of an
// appointment.  Transitions between states are enforced exclusively
// by the booking lifecycle; no other code may write the status column.
type AppointmentStatus string

const (
	StatusBooked      AppointmentStatus = "BOOKED"      // committed, awaiting confirmation
	StatusConfirmed   AppointmentStatus = "CONFIRMED"   // confirmed by client or business
	StatusCheckedIn   AppointmentStatus = "CHECKED_IN"  // client arrived at the salon
	StatusInService   AppointmentStatus = "IN_SERVICE"  // treatment in progress
	StatusCompleted   AppointmentStatus = "COMPLETED"   // treatment finished (terminal)
	StatusCancelled   AppointmentStatus = "CANCELLED"   // cancelled before service (terminal)
	StatusNoShow      AppointmentStatus = "NO_SHOW"     // client never arrived (terminal)
	StatusRescheduled AppointmentStatus = "RESCHEDULED" // superseded by a replacement booking (terminal)
)

// LiveStatuses are the statuses whose appointments still occupy their
// staff member's time.  Terminal cancellation-like statuses do not
// block the calendar.
var LiveStatuses = []AppointmentStatus{
	StatusBooked, StatusConfirmed, StatusCheckedIn, StatusInService, StatusCompleted,
}

// IsLive reports whether an appointment in the given status blocks
// its buffered time interval for new bookings.
func (s AppointmentStatus) IsLive() bool {
	switch s {
	case StatusCancelled, StatusNoShow, StatusRescheduled:
		return false
	}
	return true
}

// IsTerminal reports whether no further lifecycle transitions are
// allowed out of the given status.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// Appointment records a client's committed booking of a staff member
// for a service.  StartsAt/EndsAt are UTC instants; EndsAt is always
// StartsAt plus the snapshotted duration.  Price, duration and the
// buffers are copied from the service at booking time so the row is
// self-contained for conflict checks and checkout.  Appointments are
// never deleted; they only reach a terminal status.
//
// Fields:
//  ID            – primary key identifier.
//  BusinessID    – business the booking belongs to.
//  ClientID      – user who booked.
//  StaffID       – staff member performing the service.
//  ServiceID     – service booked (snapshot fields below are authoritative).
//  StartsAt      – scheduled start (UTC).
//  EndsAt        – scheduled end (UTC), StartsAt + DurationMin.
//  Status        – lifecycle status, see AppointmentStatus.
//  Source        – booking channel (WEB, PHONE, WALK_IN).
//  Notes         – optional client note to the salon.
//  DepositPaid   – whether a deposit was collected at booking.
//  PriceCents    – price snapshot in cents.
//  DurationMin   – duration snapshot in minutes.
//  PreBufferMin  – pre-buffer snapshot in minutes.
//  PostBufferMin – post-buffer snapshot in minutes.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Appointment struct {
	ID            uint64            // appointments.id
	BusinessID    uint64            // appointments.business_id
	ClientID      uint64            // appointments.client_id
	StaffID       uint64            // appointments.staff_id
	ServiceID     uint64            // appointments.service_id
	StartsAt      time.Time         // appointments.starts_at
	EndsAt        time.Time         // appointments.ends_at
	Status        AppointmentStatus // appointments.status
	Source        string            // appointments.source
	Notes         *string           // appointments.notes (nullable)
	DepositPaid   bool              // appointments.deposit_paid
	PriceCents    uint32            // appointments.price_cents
	DurationMin   uint32            // appointments.duration_min
	PreBufferMin  uint32            // appointments.pre_buffer_min
	PostBufferMin uint32            // appointments.post_buffer_min
	CreatedAt     time.Time         // appointments.created_at
	UpdatedAt     time.Time         // appointments.updated_at
}

// Slot is a transient bookable candidate returned by availability
// queries.  It is never persisted and carries no reservation: a slot
// is valid only until somebody commits an appointment that overlaps
// it, which is why booking always re-validates against the current
// ledger before inserting.
type Slot struct {
	StaffID  uint64    `json:"staff_id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}
