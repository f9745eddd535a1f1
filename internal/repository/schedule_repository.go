package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/salon-booking/internal/model"
)

// ScheduleRepo provides data access to the working_hours and
// time_off tables. Working hours are one row per staff member per
// weekday; a missing row means the weekly template says nothing
// about that day and the member is treated as not working it.
// All time-off timestamps are stored in UTC.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

func (r *ScheduleRepo) ownerOfStaff(ctx context.Context, staffID uint64) (uint64, error) {
	const q = `SELECT b.owner_id FROM staff s JOIN businesses b ON b.id = s.business_id WHERE s.id = ?`
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, q, staffID).Scan(&ownerID)
	return ownerID, err
}

// ReplaceWeek swaps a staff member's entire weekly template in one
// transaction: delete the old rows, bulk insert the new ones. The
// whole week is replaced at once so availability never observes a
// half-written template. Ownership is verified first; ErrForbidden
// when the staff member belongs to another owner's business.
func (r *ScheduleRepo) ReplaceWeek(ctx context.Context, staffID, ownerID uint64, week []model.WorkingHours) error {
	actualOwner, err := r.ownerOfStaff(ctx, staffID)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM working_hours WHERE staff_id = ?`, staffID); err != nil {
		return err
	}
	if len(week) > 0 {
		query := `INSERT INTO working_hours (staff_id, weekday, is_working, start_time, end_time, break_start, break_end) VALUES `
		args := make([]interface{}, 0, len(week)*7)
		for i, w := range week {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?, ?)"
			args = append(args, staffID, w.Weekday, w.IsWorking, w.StartTime, w.EndTime, w.BreakStart, w.BreakEnd)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// WeeklyHours returns a staff member's weekly template ordered by
// weekday. An empty slice means no schedule record exists at all,
// which availability treats differently from a day off.
func (r *ScheduleRepo) WeeklyHours(ctx context.Context, staffID uint64) ([]model.WorkingHours, error) {
	const q = `SELECT id, staff_id, weekday, is_working, start_time, end_time, break_start, break_end, created_at, updated_at
	           FROM working_hours WHERE staff_id = ? ORDER BY weekday`
	rows, err := r.db.QueryContext(ctx, q, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.WorkingHours, 0, 7)
	for rows.Next() {
		var w model.WorkingHours
		var brStart, brEnd sql.NullString
		if err := rows.Scan(&w.ID, &w.StaffID, &w.Weekday, &w.IsWorking,
			&w.StartTime, &w.EndTime, &brStart, &brEnd, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		if brStart.Valid {
			s := brStart.String
			w.BreakStart = &s
		}
		if brEnd.Valid {
			e := brEnd.String
			w.BreakEnd = &e
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// AddTimeOff records a time-off entry for a staff member after
// verifying ownership, populating the generated ID.
func (r *ScheduleRepo) AddTimeOff(ctx context.Context, off *model.TimeOff, ownerID uint64) error {
	actualOwner, err := r.ownerOfStaff(ctx, off.StaffID)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	const q = `INSERT INTO time_off (staff_id, starts_at, ends_at, reason) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, off.StaffID, off.StartsAt.UTC(), off.EndsAt.UTC(), off.Reason)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	off.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM time_off WHERE id = ?`, off.ID).Scan(&off.CreatedAt)
}

// DeleteTimeOff removes a time-off entry, verifying that the caller
// owns the staff member it belongs to.
func (r *ScheduleRepo) DeleteTimeOff(ctx context.Context, timeOffID, ownerID uint64) error {
	const q = `SELECT b.owner_id FROM time_off t
	           JOIN staff s ON s.id = t.staff_id
	           JOIN businesses b ON b.id = s.business_id
	           WHERE t.id = ?`
	var actualOwner uint64
	if err := r.db.QueryRowContext(ctx, q, timeOffID).Scan(&actualOwner); err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM time_off WHERE id = ?`, timeOffID)
	return err
}

// TimeOffBetween returns the time-off entries that intersect the
// half-open window [from, to), ordered by start.
func (r *ScheduleRepo) TimeOffBetween(ctx context.Context, staffID uint64, from, to time.Time) ([]model.TimeOff, error) {
	const q = `SELECT id, staff_id, starts_at, ends_at, reason, created_at
	           FROM time_off
	           WHERE staff_id = ? AND starts_at < ? AND ends_at > ?
	           ORDER BY starts_at`
	rows, err := r.db.QueryContext(ctx, q, staffID, to.UTC(), from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TimeOff, 0)
	for rows.Next() {
		var t model.TimeOff
		var reason sql.NullString
		if err := rows.Scan(&t.ID, &t.StaffID, &t.StartsAt, &t.EndsAt, &reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		if reason.Valid {
			s := reason.String
			t.Reason = &s
		}
		t.StartsAt = t.StartsAt.UTC()
		t.EndsAt = t.EndsAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListUpcomingTimeOff returns a staff member's future time-off for
// the owner's schedule screen.
func (r *ScheduleRepo) ListUpcomingTimeOff(ctx context.Context, staffID uint64) ([]model.TimeOff, error) {
	return r.TimeOffBetween(ctx, staffID, time.Now().UTC(), time.Now().UTC().AddDate(1, 0, 0))
}
