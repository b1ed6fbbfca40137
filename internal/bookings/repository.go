package bookings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/platform/db"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations for bookings.
type Repository interface {
	Create(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, ownerID int64, filter ListFilter) ([]Booking, int, error)
	Update(ctx context.Context, b *Booking) (*Booking, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const bookingColumns = `id, user_id, date, time_slot, address, COALESCE(description, ''), status, COALESCE(admin_notes, ''), created_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.UserID, &b.Date, &b.TimeSlot, &b.Address, &b.Description, &b.Status, &b.AdminNotes, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts a booking. A concurrent claim on the same (date, slot)
// loses against the unique constraint and surfaces as a conflict.
func (r *PGRepository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO bookings (user_id, date, time_slot, address, description, status)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), 'PENDING')
		 RETURNING `+bookingColumns,
		b.UserID, b.Date, b.TimeSlot, b.Address, b.Description)
	booking, err := scanBooking(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return booking, nil
}

// GetByID loads one booking.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

// List returns bookings, scoped to ownerID unless it is zero (staff).
func (r *PGRepository) List(ctx context.Context, ownerID int64, filter ListFilter) ([]Booking, int, error) {
	where := ` WHERE ($1 = 0 OR user_id = $1) AND ($2 = '' OR status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, ownerID, filter.Status).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings`+where+` ORDER BY date DESC, time_slot DESC LIMIT $3 OFFSET $4`,
		ownerID, filter.Status, perPage, shared.Offset(filter.Page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *b)
	}
	return items, total, rows.Err()
}

// Update persists writable booking fields.
func (r *PGRepository) Update(ctx context.Context, b *Booking) (*Booking, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE bookings SET
		    date = $2, time_slot = $3, address = $4,
		    description = NULLIF($5, ''), status = $6, admin_notes = NULLIF($7, '')
		 WHERE id = $1
		 RETURNING `+bookingColumns,
		b.ID, b.Date, b.TimeSlot, b.Address, b.Description, b.Status, b.AdminNotes)
	booking, err := scanBooking(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return booking, nil
}

// Delete removes a booking.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
