package model

import "time"

// Business represents a salon or spa registered on the marketplace.
// Each business belongs to an owner user and carries the IANA timezone
// in which all of its working hours and appointments are interpreted.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user who owns and manages the business.
//  Name        – display name shown in the marketplace.
//  Description – optional free-form text about the business.
//  Address     – street address shown to clients.
//  Timezone    – IANA zone name (e.g. "Europe/Berlin") used when
//                resolving working hours into concrete instants.
//  IsActive    – whether the business is visible and bookable.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Business struct {
	ID          uint64    // businesses.id
	OwnerID     uint64    // businesses.owner_id
	Name        string    // businesses.name
	Description *string   // businesses.description (nullable)
	Address     string    // businesses.address
	Timezone    string    // businesses.timezone
	IsActive    bool      // businesses.is_active
	CreatedAt   time.Time // businesses.created_at
	UpdatedAt   time.Time // businesses.updated_at
}
