package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/model"
)

// AppointmentRepo provides data access to the appointments table and
// implements the atomic commit contract of the booking orchestrator:
// every write takes the staff row lock first, re-checks buffered
// overlap inside the same transaction, and only then inserts or
// updates. Appointment rows are never deleted; they only move to a
// terminal status. All timestamps are stored in UTC.
type AppointmentRepo struct {
	db    *sql.DB
	staff *StaffRepo
}

// NewAppointmentRepo returns a new AppointmentRepo bound to the given
// database. The staff repository supplies the per-staff row lock.
func NewAppointmentRepo(db *sql.DB, staff *StaffRepo) *AppointmentRepo {
	return &AppointmentRepo{db: db, staff: staff}
}

const apptCols = `id, business_id, client_id, staff_id, service_id, starts_at, ends_at,
	status, source, notes, deposit_paid, price_cents, duration_min, pre_buffer_min, post_buffer_min,
	created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*model.Appointment, error) {
	var a model.Appointment
	var notes sql.NullString
	err := row.Scan(&a.ID, &a.BusinessID, &a.ClientID, &a.StaffID, &a.ServiceID,
		&a.StartsAt, &a.EndsAt, &a.Status, &a.Source, &notes, &a.DepositPaid,
		&a.PriceCents, &a.DurationMin, &a.PreBufferMin, &a.PostBufferMin,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		n := notes.String
		a.Notes = &n
	}
	a.StartsAt = a.StartsAt.UTC()
	a.EndsAt = a.EndsAt.UTC()
	return &a, nil
}

// liveStatusFilter excludes the statuses that free the calendar.
const liveStatusFilter = `status NOT IN ('CANCELLED','NO_SHOW','RESCHEDULED')`

// LiveForStaff returns the live appointments of a staff member that
// intersect the half-open window [from, to), ordered by start. This
// is the booking ledger view used by slot generation and conflict
// pre-checks.
func (r *AppointmentRepo) LiveForStaff(ctx context.Context, staffID uint64, from, to time.Time) ([]model.Appointment, error) {
	const q = `SELECT ` + apptCols + ` FROM appointments
	           WHERE staff_id = ? AND ` + liveStatusFilter + `
	             AND starts_at < ? AND ends_at > ?
	           ORDER BY starts_at`
	rows, err := r.db.QueryContext(ctx, q, staffID, to.UTC(), from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// conflictExistsTx reports whether any live appointment's buffered
// interval overlaps the candidate's buffered interval. Both sides'
// buffers count: the stored row extends by its own snapshot,
// the candidate by the pre/post arguments. excludeID drops one row
// from the check, used when that row is superseded in the same
// transaction.
func (r *AppointmentRepo) conflictExistsTx(ctx context.Context, tx *sql.Tx, staffID uint64, start, end time.Time, pre, post time.Duration, excludeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM appointments
	           WHERE staff_id = ? AND id <> ? AND ` + liveStatusFilter + `
	             AND DATE_SUB(starts_at, INTERVAL pre_buffer_min MINUTE) < ?
	             AND DATE_ADD(ends_at, INTERVAL post_buffer_min MINUTE) > ?`
	var n int
	err := tx.QueryRowContext(ctx, q, staffID, excludeID,
		end.UTC().Add(post), start.UTC().Add(-pre)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AppointmentRepo) insertTx(ctx context.Context, tx *sql.Tx, a *model.Appointment) error {
	const q = `INSERT INTO appointments
	           (business_id, client_id, staff_id, service_id, starts_at, ends_at, status, source, notes,
	            deposit_paid, price_cents, duration_min, pre_buffer_min, post_buffer_min)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, a.BusinessID, a.ClientID, a.StaffID, a.ServiceID,
		a.StartsAt.UTC(), a.EndsAt.UTC(), a.Status, a.Source, a.Notes,
		a.DepositPaid, a.PriceCents, a.DurationMin, a.PreBufferMin, a.PostBufferMin)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM appointments WHERE id = ?`, a.ID).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

// BookAtomic commits a new appointment. It locks the staff row,
// re-checks buffered overlap against the live ledger inside the same
// transaction, and inserts only when the slot is still free. A lost
// race surfaces as booking.ErrSlotNoLongerAvailable; the caller must
// re-query availability.
func (r *AppointmentRepo) BookAtomic(ctx context.Context, a *model.Appointment) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := r.staff.LockTx(ctx, tx, a.StaffID); err != nil {
		return 0, err
	}
	pre := time.Duration(a.PreBufferMin) * time.Minute
	post := time.Duration(a.PostBufferMin) * time.Minute
	conflict, err := r.conflictExistsTx(ctx, tx, a.StaffID, a.StartsAt, a.EndsAt, pre, post, 0)
	if err != nil {
		return 0, err
	}
	if conflict {
		return 0, booking.ErrSlotNoLongerAvailable
	}
	if err := r.insertTx(ctx, tx, a); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return a.ID, nil
}

// RescheduleAtomic supersedes prev with replacement in one
// transaction: the staff row is locked, prev is moved to RESCHEDULED
// guarded on its current status, and the replacement is inserted
// after an overlap re-check that ignores prev's own interval.
func (r *AppointmentRepo) RescheduleAtomic(ctx context.Context, prev, replacement *model.Appointment) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := r.staff.LockTx(ctx, tx, prev.StaffID); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE appointments SET status = 'RESCHEDULED' WHERE id = ? AND status = ?`,
		prev.ID, prev.Status)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		var current string
		if err := tx.QueryRowContext(ctx,
			`SELECT status FROM appointments WHERE id = ?`, prev.ID).Scan(&current); err != nil {
			return 0, err
		}
		return 0, booking.ErrTransitionConflict
	}
	pre := time.Duration(replacement.PreBufferMin) * time.Minute
	post := time.Duration(replacement.PostBufferMin) * time.Minute
	conflict, err := r.conflictExistsTx(ctx, tx, replacement.StaffID,
		replacement.StartsAt, replacement.EndsAt, pre, post, prev.ID)
	if err != nil {
		return 0, err
	}
	if conflict {
		return 0, booking.ErrSlotNoLongerAvailable
	}
	if err := r.insertTx(ctx, tx, replacement); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return replacement.ID, nil
}

// TransitionStatus applies one guarded lifecycle edge: the update
// only matches while the row still holds the expected status. A miss
// means a concurrent request moved the row first, reported as
// booking.ErrTransitionConflict; a missing row is sql.ErrNoRows.
func (r *AppointmentRepo) TransitionStatus(ctx context.Context, id uint64, from, to model.AppointmentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET status = ? WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var current string
		if err := r.db.QueryRowContext(ctx,
			`SELECT status FROM appointments WHERE id = ?`, id).Scan(&current); err != nil {
			return err
		}
		return booking.ErrTransitionConflict
	}
	return nil
}

// GetByID fetches an appointment by id. Returns sql.ErrNoRows when
// it does not exist.
func (r *AppointmentRepo) GetByID(ctx context.Context, id uint64) (*model.Appointment, error) {
	return scanAppointment(r.db.QueryRowContext(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = ?`, id))
}

// GetByIDForClient fetches an appointment and verifies it belongs to
// the calling client. Returns ErrForbidden on a mismatch so handlers
// do not leak other clients' bookings.
func (r *AppointmentRepo) GetByIDForClient(ctx context.Context, id, clientID uint64) (*model.Appointment, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ClientID != clientID {
		return nil, ErrForbidden
	}
	return a, nil
}

// GetByIDForOwner fetches an appointment and verifies that the caller
// owns the business it belongs to.
func (r *AppointmentRepo) GetByIDForOwner(ctx context.Context, id, ownerID uint64) (*model.Appointment, error) {
	const q = `SELECT b.owner_id FROM appointments a
	           JOIN businesses b ON b.id = a.business_id
	           WHERE a.id = ?`
	var actualOwner uint64
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&actualOwner); err != nil {
		return nil, err
	}
	if actualOwner != ownerID {
		return nil, ErrForbidden
	}
	return r.GetByID(ctx, id)
}

// AppointmentDetail is an appointment joined with the names a list
// screen needs, so clients and owners don't chase ids.
type AppointmentDetail struct {
	ID            uint64    `json:"id"`
	BusinessID    uint64    `json:"business_id"`
	BusinessName  string    `json:"business_name"`
	StaffID       uint64    `json:"staff_id"`
	StaffName     string    `json:"staff_name"`
	ServiceID     uint64    `json:"service_id"`
	ServiceName   string    `json:"service_name"`
	ClientID      uint64    `json:"client_id"`
	ClientEmail   string    `json:"client_email"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Status        string    `json:"status"`
	Source        string    `json:"source"`
	Notes         *string   `json:"notes,omitempty"`
	PriceCents    uint32    `json:"price_cents"`
	DurationMin   uint32    `json:"duration_min"`
	CreatedAt     time.Time `json:"created_at"`
}

const detailQ = `SELECT a.id, a.business_id, b.name, a.staff_id, st.display_name,
	       a.service_id, sv.name, a.client_id, u.email,
	       a.starts_at, a.ends_at, a.status, a.source, a.notes,
	       a.price_cents, a.duration_min, a.created_at
	FROM appointments a
	JOIN businesses b ON b.id = a.business_id
	JOIN staff st ON st.id = a.staff_id
	JOIN services sv ON sv.id = a.service_id
	JOIN users u ON u.id = a.client_id`

func scanDetail(rows *sql.Rows) (*AppointmentDetail, error) {
	var d AppointmentDetail
	var notes sql.NullString
	err := rows.Scan(&d.ID, &d.BusinessID, &d.BusinessName, &d.StaffID, &d.StaffName,
		&d.ServiceID, &d.ServiceName, &d.ClientID, &d.ClientEmail,
		&d.StartsAt, &d.EndsAt, &d.Status, &d.Source, &notes,
		&d.PriceCents, &d.DurationMin, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		n := notes.String
		d.Notes = &n
	}
	d.StartsAt = d.StartsAt.UTC()
	d.EndsAt = d.EndsAt.UTC()
	return &d, nil
}

// ListByClient returns a client's appointments with business, staff
// and service names, newest first.
func (r *AppointmentRepo) ListByClient(ctx context.Context, clientID uint64) ([]AppointmentDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		detailQ+` WHERE a.client_id = ? ORDER BY a.starts_at DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AppointmentDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// ListForBusinessDay returns a business's appointments intersecting
// [from, to) for the owner's agenda, ordered by staff then start.
// Ownership is verified first.
func (r *AppointmentRepo) ListForBusinessDay(ctx context.Context, businessID, ownerID uint64, from, to time.Time) ([]AppointmentDetail, error) {
	var actualOwner uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT owner_id FROM businesses WHERE id = ?`, businessID).Scan(&actualOwner); err != nil {
		return nil, err
	}
	if actualOwner != ownerID {
		return nil, ErrForbidden
	}
	rows, err := r.db.QueryContext(ctx,
		detailQ+` WHERE a.business_id = ? AND a.starts_at < ? AND a.ends_at > ?
	ORDER BY a.staff_id, a.starts_at`, businessID, to.UTC(), from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AppointmentDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
