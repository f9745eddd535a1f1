package model

import "time"

// Service represents a bookable treatment offered by a business.
// Duration and the pre/post buffers define how much of a staff
// member's day a single appointment consumes; price is the list
// price in cents.  All three are snapshotted onto the appointment
// at booking time so later edits to the service never change
// already-committed bookings.
//
// Fields:
//  ID            – primary key identifier.
//  BusinessID    – business offering the service.
//  Name          – display name (e.g. "Women's Cut").
//  Description   – optional details shown to clients.
//  DurationMin   – service duration in minutes.
//  PreBufferMin  – setup time in minutes that must stay unbooked
//                  before the appointment.
//  PostBufferMin – cleanup time in minutes that must stay unbooked
//                  after the appointment.
//  PriceCents    – list price in cents.
//  IsActive      – whether the service can currently be booked.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Service struct {
	ID            uint64    // services.id
	BusinessID    uint64    // services.business_id
	Name          string    // services.name
	Description   *string   // services.description (nullable)
	DurationMin   uint32    // services.duration_min
	PreBufferMin  uint32    // services.pre_buffer_min
	PostBufferMin uint32    // services.post_buffer_min
	PriceCents    uint32    // services.price_cents
	IsActive      bool      // services.is_active
	CreatedAt     time.Time // services.created_at
	UpdatedAt     time.Time // services.updated_at
}
