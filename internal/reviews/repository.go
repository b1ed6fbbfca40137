package reviews

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations for reviews.
type Repository interface {
	Create(ctx context.Context, review *Review) (*Review, error)
	GetByID(ctx context.Context, id int64) (*Review, error)
	List(ctx context.Context, verifiedOnly bool, filter ListFilter) ([]Review, int, error)
	Update(ctx context.Context, review *Review) (*Review, error)
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

const reviewSelect = `
SELECT r.id, r.user_id, u.full_name, r.project_id, r.rating, r.comment, r.is_verified, r.created_at
FROM reviews r
JOIN users u ON u.id = r.user_id`

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	err := row.Scan(&rv.ID, &rv.UserID, &rv.UserName, &rv.ProjectID, &rv.Rating, &rv.Comment, &rv.IsVerified, &rv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// Create inserts a review; new reviews start unverified.
func (r *PGRepository) Create(ctx context.Context, review *Review) (*Review, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reviews (user_id, project_id, rating, comment)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		review.UserID, review.ProjectID, review.Rating, review.Comment).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID loads one review.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Review, error) {
	return scanReview(r.pool.QueryRow(ctx, reviewSelect+` WHERE r.id = $1`, id))
}

// List returns reviews, optionally restricted to verified ones.
func (r *PGRepository) List(ctx context.Context, verifiedOnly bool, filter ListFilter) ([]Review, int, error) {
	where := ` WHERE (NOT $1 OR r.is_verified) AND ($2 = 0 OR r.project_id = $2)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews r JOIN users u ON u.id = r.user_id`+where,
		verifiedOnly, filter.ProjectID).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	rows, err := r.pool.Query(ctx,
		reviewSelect+where+` ORDER BY r.created_at DESC LIMIT $3 OFFSET $4`,
		verifiedOnly, filter.ProjectID, perPage, shared.Offset(filter.Page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *rv)
	}
	return items, total, rows.Err()
}

// Update persists rating, comment, and the verification flag.
func (r *PGRepository) Update(ctx context.Context, review *Review) (*Review, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reviews SET rating = $2, comment = $3, is_verified = $4 WHERE id = $1`,
		review.ID, review.Rating, review.Comment, review.IsVerified)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetByID(ctx, review.ID)
}

// Delete removes a review.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
