package invoices

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/platform/db"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations for invoices.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) (*Invoice, error)
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, ownerID int64, filter ListFilter) ([]Invoice, int, error)
	Update(ctx context.Context, inv *Invoice) (*Invoice, error)
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

const invoiceSelect = `
SELECT i.id, i.order_id, COALESCE(o.user_id, 0), i.invoice_number,
       i.amount::text, i.tax_amount::text, i.discount_amount::text, i.final_amount::text,
       i.status, i.due_date, i.paid_date, i.created_at, i.updated_at,
       o.full_name, o.service_title
FROM invoices i
JOIN service_orders o ON o.id = i.order_id`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.OrderID, &inv.OrderOwnerID, &inv.InvoiceNumber,
		&inv.Amount, &inv.TaxAmount, &inv.DiscountAmount, &inv.FinalAmount,
		&inv.Status, &inv.DueDate, &inv.PaidDate, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.CustomerName, &inv.ServiceTitle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// Create inserts an invoice; invoice_number is unique.
func (r *PGRepository) Create(ctx context.Context, inv *Invoice) (*Invoice, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO invoices (order_id, invoice_number, amount, tax_amount, discount_amount, final_amount, status, due_date)
		 VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6::numeric, 'PENDING', $7)
		 RETURNING id`,
		inv.OrderID, inv.InvoiceNumber, inv.Amount, inv.TaxAmount, inv.DiscountAmount, inv.FinalAmount, inv.DueDate).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID loads one invoice with its order facts.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, invoiceSelect+` WHERE i.id = $1`, id)
	return scanInvoice(row)
}

// List returns invoices scoped to the order owner unless ownerID is zero.
func (r *PGRepository) List(ctx context.Context, ownerID int64, filter ListFilter) ([]Invoice, int, error) {
	where := ` WHERE ($1 = 0 OR o.user_id = $1) AND ($2 = '' OR i.status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices i JOIN service_orders o ON o.id = i.order_id`+where,
		ownerID, filter.Status).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	rows, err := r.pool.Query(ctx,
		invoiceSelect+where+` ORDER BY i.created_at DESC LIMIT $3 OFFSET $4`,
		ownerID, filter.Status, perPage, shared.Offset(filter.Page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *inv)
	}
	return items, total, rows.Err()
}

// Update persists invoice amounts, dates, and status.
func (r *PGRepository) Update(ctx context.Context, inv *Invoice) (*Invoice, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices SET
		    amount = $2::numeric, tax_amount = $3::numeric, discount_amount = $4::numeric,
		    final_amount = $5::numeric, status = $6, due_date = $7, paid_date = $8,
		    updated_at = NOW()
		 WHERE id = $1`,
		inv.ID, inv.Amount, inv.TaxAmount, inv.DiscountAmount, inv.FinalAmount, inv.Status, inv.DueDate, inv.PaidDate)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetByID(ctx, inv.ID)
}

// Delete removes an invoice.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
