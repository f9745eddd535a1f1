package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/salon-booking/internal/model"
)

// ServiceRepo provides data access to the services table. Duration,
// buffers and price on a service row are templates: committed
// appointments carry their own snapshot, so editing a service never
// rewrites existing bookings.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo returns a new ServiceRepo bound to the given database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceCols = `id, business_id, name, description, duration_min, pre_buffer_min, post_buffer_min, price_cents, is_active, created_at, updated_at`

func scanService(row interface{ Scan(...any) error }) (*model.Service, error) {
	var s model.Service
	var desc sql.NullString
	err := row.Scan(&s.ID, &s.BusinessID, &s.Name, &desc,
		&s.DurationMin, &s.PreBufferMin, &s.PostBufferMin, &s.PriceCents,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		s.Description = &d
	}
	return &s, nil
}

// Create inserts a new service after verifying business ownership.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service, ownerID uint64) error {
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM businesses WHERE id = ?`, s.BusinessID).Scan(&actualOwner)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	const q = `INSERT INTO services (business_id, name, description, duration_min, pre_buffer_min, post_buffer_min, price_cents)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.BusinessID, s.Name, s.Description,
		s.DurationMin, s.PreBufferMin, s.PostBufferMin, s.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT is_active, created_at, updated_at FROM services WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID fetches a service by id. Returns sql.ErrNoRows when it
// does not exist.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
	return scanService(r.db.QueryRowContext(ctx,
		`SELECT `+serviceCols+` FROM services WHERE id = ?`, id))
}

// ListByBusiness returns the services of a business, optionally
// filtered to active ones for the public surface.
func (r *ServiceRepo) ListByBusiness(ctx context.Context, businessID uint64, activeOnly bool) ([]model.Service, error) {
	q := `SELECT ` + serviceCols + ` FROM services WHERE business_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *ServiceRepo) ownerOfService(ctx context.Context, serviceID uint64) (uint64, error) {
	const q = `SELECT b.owner_id FROM services s JOIN businesses b ON b.id = s.business_id WHERE s.id = ?`
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, q, serviceID).Scan(&ownerID)
	return ownerID, err
}

// Update modifies a service's template fields after verifying
// ownership. Existing appointments keep their snapshots.
func (r *ServiceRepo) Update(ctx context.Context, s *model.Service, ownerID uint64) error {
	actualOwner, err := r.ownerOfService(ctx, s.ID)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	const q = `UPDATE services SET name = ?, description = ?, duration_min = ?, pre_buffer_min = ?, post_buffer_min = ?, price_cents = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q, s.Name, s.Description,
		s.DurationMin, s.PreBufferMin, s.PostBufferMin, s.PriceCents, s.ID)
	return err
}

// Deactivate hides a service from the catalog and stops new bookings
// of it. Existing appointments are unaffected, so unlike staff
// deactivation there is no conflict check.
func (r *ServiceRepo) Deactivate(ctx context.Context, serviceID, ownerID uint64) error {
	actualOwner, err := r.ownerOfService(ctx, serviceID)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `UPDATE services SET is_active = 0 WHERE id = ?`, serviceID)
	return err
}
