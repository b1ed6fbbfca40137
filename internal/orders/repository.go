package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations for service orders.
type Repository interface {
	Create(ctx context.Context, o *ServiceOrder) (*ServiceOrder, error)
	GetByID(ctx context.Context, id int64) (*ServiceOrder, error)
	List(ctx context.Context, ownerID int64, filter ListFilter) ([]ServiceOrder, int, error)
	Update(ctx context.Context, o *ServiceOrder) (*ServiceOrder, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*ServiceOrder, error)
	Delete(ctx context.Context, id int64) error
	OwnerEmail(ctx context.Context, orderID int64) (string, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const orderColumns = `id, COALESCE(user_id, 0), service_title, full_name, phone, COALESCE(description, ''), status, COALESCE(admin_notes, ''), COALESCE(estimated_cost::text, ''), created_at, updated_at`

func scanOrder(row pgx.Row) (*ServiceOrder, error) {
	var o ServiceOrder
	err := row.Scan(&o.ID, &o.UserID, &o.ServiceTitle, &o.FullName, &o.Phone, &o.Description, &o.Status, &o.AdminNotes, &o.EstimatedCost, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Create inserts a new order. A zero UserID is stored as NULL.
func (r *PGRepository) Create(ctx context.Context, o *ServiceOrder) (*ServiceOrder, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO service_orders (user_id, service_title, full_name, phone, description, status)
		 VALUES (NULLIF($1, 0), $2, $3, $4, NULLIF($5, ''), 'PENDING')
		 RETURNING `+orderColumns,
		o.UserID, o.ServiceTitle, o.FullName, o.Phone, o.Description)
	return scanOrder(row)
}

// GetByID loads one order.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*ServiceOrder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE id = $1`, id)
	return scanOrder(row)
}

// List returns orders, scoped to ownerID unless it is zero (staff).
func (r *PGRepository) List(ctx context.Context, ownerID int64, filter ListFilter) ([]ServiceOrder, int, error) {
	where := ` WHERE ($1 = 0 OR user_id = $1)
	             AND ($2 = '' OR status = $2)
	             AND ($3 = '' OR full_name ILIKE '%' || $3 || '%' OR phone ILIKE '%' || $3 || '%' OR service_title ILIKE '%' || $3 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM service_orders`+where, ownerID, filter.Status, filter.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM service_orders`+where+` ORDER BY created_at DESC LIMIT $4 OFFSET $5`,
		ownerID, filter.Status, filter.Search, perPage, shared.Offset(filter.Page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *o)
	}
	return items, total, rows.Err()
}

// Update persists writable fields of an order.
func (r *PGRepository) Update(ctx context.Context, o *ServiceOrder) (*ServiceOrder, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE service_orders SET
		    service_title = $2, full_name = $3, phone = $4,
		    description = NULLIF($5, ''), status = $6,
		    admin_notes = NULLIF($7, ''), estimated_cost = NULLIF($8, '')::numeric,
		    updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+orderColumns,
		o.ID, o.ServiceTitle, o.FullName, o.Phone, o.Description, o.Status, o.AdminNotes, o.EstimatedCost)
	return scanOrder(row)
}

// UpdateStatus changes only the status field.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status string) (*ServiceOrder, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE service_orders SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+orderColumns,
		id, status)
	return scanOrder(row)
}

// Delete removes an order.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM service_orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// OwnerEmail resolves the owning account's email for notifications;
// empty for guest orders.
func (r *PGRepository) OwnerEmail(ctx context.Context, orderID int64) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(u.email, '') FROM service_orders o LEFT JOIN users u ON u.id = o.user_id WHERE o.id = $1`,
		orderID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return email, nil
}
