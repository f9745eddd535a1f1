// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// Queue names. Both queues are durable; events survive broker
// restarts and are processed at least once.
const (
	BookedQueue        = "appointment.booked"
	StatusChangedQueue = "appointment.status_changed"
)

// AppointmentBookedEvent is published when a booking commits. It
// carries enough for downstream consumers (notifications, analytics)
// to act without querying the primary database.
type AppointmentBookedEvent struct {
	AppointmentID uint64 `json:"appointment_id"`
	BusinessID    uint64 `json:"business_id"`
	ClientID      uint64 `json:"client_id"`
	StaffID       uint64 `json:"staff_id"`
	ServiceID     uint64 `json:"service_id"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	Source        string `json:"source"`
	PriceCents    uint32 `json:"price_cents"`
	BookedAt      string `json:"booked_at"`
}

// AppointmentStatusChangedEvent is published on every lifecycle
// transition. The loyalty consumer reads PriceCents when To is
// COMPLETED to award points; the core never computes totals itself.
type AppointmentStatusChangedEvent struct {
	AppointmentID uint64 `json:"appointment_id"`
	BusinessID    uint64 `json:"business_id"`
	ClientID      uint64 `json:"client_id"`
	StaffID       uint64 `json:"staff_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	StartsAt      string `json:"starts_at"`
	PriceCents    uint32 `json:"price_cents"`
	ChangedAt     string `json:"changed_at"`
}
