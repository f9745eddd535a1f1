package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/salon-booking/internal/model"
)

// StaffRepo provides data access to the staff table. The staff row
// doubles as the serialization point for booking commits: the
// appointment repository locks it FOR UPDATE so that all writes to
// one staff member's calendar are serialized.
type StaffRepo struct {
	db *sql.DB
}

// NewStaffRepo returns a new StaffRepo bound to the given database.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

const staffCols = `id, business_id, display_name, title, is_active, created_at, updated_at`

func scanStaff(row interface{ Scan(...any) error }) (*model.Staff, error) {
	var s model.Staff
	var title sql.NullString
	err := row.Scan(&s.ID, &s.BusinessID, &s.DisplayName, &title, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if title.Valid {
		t := title.String
		s.Title = &t
	}
	return &s, nil
}

// Create inserts a new staff member after verifying that the caller
// owns the business. Returns sql.ErrNoRows when the business does
// not exist and ErrForbidden on ownership mismatch.
func (r *StaffRepo) Create(ctx context.Context, s *model.Staff, ownerID uint64) error {
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM businesses WHERE id = ?`, s.BusinessID).Scan(&actualOwner)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	const q = `INSERT INTO staff (business_id, display_name, title) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.BusinessID, s.DisplayName, s.Title)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT is_active, created_at, updated_at FROM staff WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID fetches a staff member by id. Returns sql.ErrNoRows when
// they do not exist.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (*model.Staff, error) {
	return scanStaff(r.db.QueryRowContext(ctx,
		`SELECT `+staffCols+` FROM staff WHERE id = ?`, id))
}

// ListByBusiness returns the staff of a business. When activeOnly is
// set, deactivated members are filtered out; the public availability
// surface always sets it.
func (r *StaffRepo) ListByBusiness(ctx context.Context, businessID uint64, activeOnly bool) ([]model.Staff, error) {
	q := `SELECT ` + staffCols + ` FROM staff WHERE business_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY display_name`
	rows, err := r.db.QueryContext(ctx, q, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Staff, 0)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ownerOfStaff resolves the owning user of a staff member's business.
func (r *StaffRepo) ownerOfStaff(ctx context.Context, staffID uint64) (uint64, error) {
	const q = `SELECT b.owner_id FROM staff s JOIN businesses b ON b.id = s.business_id WHERE s.id = ?`
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, q, staffID).Scan(&ownerID)
	return ownerID, err
}

// Update modifies display name and title after verifying that the
// caller owns the staff member's business.
func (r *StaffRepo) Update(ctx context.Context, s *model.Staff, ownerID uint64) error {
	actualOwner, err := r.ownerOfStaff(ctx, s.ID)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE staff SET display_name = ?, title = ? WHERE id = ?`,
		s.DisplayName, s.Title, s.ID)
	return err
}

// Deactivate removes a staff member from booking without deleting
// their history. It fails with ErrConflict while live future
// appointments still reference them, so owners must cancel or
// reassign those first.
func (r *StaffRepo) Deactivate(ctx context.Context, staffID, ownerID uint64) error {
	actualOwner, err := r.ownerOfStaff(ctx, staffID)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	const countQ = `SELECT COUNT(*) FROM appointments
	                WHERE staff_id = ? AND ends_at > UTC_TIMESTAMP()
	                  AND status NOT IN ('CANCELLED','NO_SHOW','RESCHEDULED')`
	var n int
	if err := r.db.QueryRowContext(ctx, countQ, staffID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx, `UPDATE staff SET is_active = 0 WHERE id = ?`, staffID)
	return err
}

// LockTx takes the row lock that serializes booking commits for a
// staff member. It must be called inside the same transaction that
// re-checks conflicts and inserts the appointment.
func (r *StaffRepo) LockTx(ctx context.Context, tx *sql.Tx, staffID uint64) error {
	var id uint64
	return tx.QueryRowContext(ctx, `SELECT id FROM staff WHERE id = ? FOR UPDATE`, staffID).Scan(&id)
}
