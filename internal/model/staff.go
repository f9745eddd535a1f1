package model

import "time"

// Staff represents a bookable staff member of a business (stylist,
// therapist, technician).  Availability is derived from the staff
// member's weekly working hours and time-off records; the staff row
// itself also serves as the per-staff serialization point when
// committing appointments (it is locked FOR UPDATE during a booking
// transaction).
//
// Fields:
//  ID          – primary key identifier.
//  BusinessID  – business the staff member works for.
//  DisplayName – name shown to clients when picking a slot.
//  Title       – optional role title (e.g. "Senior Stylist").
//  IsActive    – whether the staff member can currently be booked.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Staff struct {
	ID          uint64    // staff.id
	BusinessID  uint64    // staff.business_id
	DisplayName string    // staff.display_name
	Title       *string   // staff.title (nullable)
	IsActive    bool      // staff.is_active
	CreatedAt   time.Time // staff.created_at
	UpdatedAt   time.Time // staff.updated_at
}
