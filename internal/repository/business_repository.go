package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/salon-booking/internal/model"
)

// BusinessRepo provides data access to the businesses table. Every
// business belongs to exactly one owner account; ownership is
// enforced here so handlers only have to translate ErrForbidden.
type BusinessRepo struct {
	db *sql.DB
}

// NewBusinessRepo returns a new BusinessRepo bound to the given database.
func NewBusinessRepo(db *sql.DB) *BusinessRepo { return &BusinessRepo{db: db} }

// Create inserts a new business and populates the generated ID and
// timestamps on the provided model.
func (r *BusinessRepo) Create(ctx context.Context, b *model.Business) error {
	const q = `INSERT INTO businesses (owner_id, name, description, address, timezone) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.OwnerID, b.Name, b.Description, b.Address, b.Timezone)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT is_active, created_at, updated_at FROM businesses WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, b.ID).Scan(&b.IsActive, &b.CreatedAt, &b.UpdatedAt)
}

func scanBusiness(row interface{ Scan(...any) error }) (*model.Business, error) {
	var b model.Business
	var desc sql.NullString
	err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &desc, &b.Address, &b.Timezone,
		&b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		b.Description = &d
	}
	return &b, nil
}

const businessCols = `id, owner_id, name, description, address, timezone, is_active, created_at, updated_at`

// GetByID fetches a business by id. Returns sql.ErrNoRows when it
// does not exist.
func (r *BusinessRepo) GetByID(ctx context.Context, id uint64) (*model.Business, error) {
	return scanBusiness(r.db.QueryRowContext(ctx,
		`SELECT `+businessCols+` FROM businesses WHERE id = ?`, id))
}

// ListByOwner returns all businesses owned by the given user, newest
// first.
func (r *BusinessRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Business, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+businessCols+` FROM businesses WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Business, 0)
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListActive returns active businesses for the public marketplace
// browse. An optional case-insensitive name/address filter and
// limit/offset paging are supported; limit is clamped to 100.
func (r *BusinessRepo) ListActive(ctx context.Context, search string, limit, offset int) ([]model.Business, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	q := `SELECT ` + businessCols + ` FROM businesses WHERE is_active = 1`
	args := make([]any, 0, 3)
	if s := strings.TrimSpace(search); s != "" {
		q += ` AND (name LIKE ? OR address LIKE ?)`
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	q += ` ORDER BY name LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Business, 0)
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Update modifies name, description, address and timezone of a
// business after verifying ownership. Returns sql.ErrNoRows when the
// business does not exist and ErrForbidden when it belongs to a
// different owner.
func (r *BusinessRepo) Update(ctx context.Context, b *model.Business, ownerID uint64) error {
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM businesses WHERE id = ?`, b.ID).Scan(&actualOwner)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	const q = `UPDATE businesses SET name = ?, description = ?, address = ?, timezone = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q, b.Name, b.Description, b.Address, b.Timezone, b.ID)
	return err
}

// SetActive toggles the marketplace visibility of a business after
// verifying ownership. Deactivation does not touch existing
// appointments; it only stops new public bookings.
func (r *BusinessRepo) SetActive(ctx context.Context, id, ownerID uint64, active bool) error {
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM businesses WHERE id = ?`, id).Scan(&actualOwner)
	if err != nil {
		return err
	}
	if actualOwner != ownerID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `UPDATE businesses SET is_active = ? WHERE id = ?`, active, id)
	return err
}

// OwnerOf returns the owner id of a business. Used by other
// repositories to validate nested ownership without a second round
// trip through the handler.
func (r *BusinessRepo) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM businesses WHERE id = ?`, id).Scan(&ownerID)
	return ownerID, err
}
