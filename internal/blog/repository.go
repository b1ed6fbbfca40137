package blog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/platform/db"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations for blog posts.
type Repository interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, filter ListFilter) ([]Post, int, error)
	Update(ctx context.Context, post *Post) (*Post, error)
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const postColumns = `id, title, slug, author_id, content, COALESCE(cover_image, ''),
	COALESCE(tags, ''), is_published, view_count, created_at, updated_at`

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Content, &p.CoverImage,
		&p.Tags, &p.IsPublished, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a post; the slug is unique.
func (r *PGRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO blog_posts (title, slug, author_id, content, cover_image, tags, is_published)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
		 RETURNING id`,
		post.Title, post.Slug, post.AuthorID, post.Content, post.CoverImage, post.Tags, post.IsPublished).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID loads one post.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Post, error) {
	return scanPost(r.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id))
}

// GetBySlug loads one post by its slug.
func (r *PGRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	return scanPost(r.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE slug = $1`, slug))
}

// List returns published posts, newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Post, int, error) {
	where := ` WHERE is_published
	    AND ($1 = '' OR title ILIKE '%' || $1 || '%' OR content ILIKE '%' || $1 || '%' OR tags ILIKE '%' || $1 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blog_posts`+where, filter.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+postColumns+` FROM blog_posts`+where+
			` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		filter.Search, perPage, shared.Offset(filter.Page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

// Update persists post fields.
func (r *PGRepository) Update(ctx context.Context, post *Post) (*Post, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE blog_posts SET
		    title = $2, slug = $3, content = $4, cover_image = NULLIF($5, ''),
		    tags = NULLIF($6, ''), is_published = $7, updated_at = NOW()
		 WHERE id = $1`,
		post.ID, post.Title, post.Slug, post.Content, post.CoverImage, post.Tags, post.IsPublished)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetByID(ctx, post.ID)
}

// Delete removes a post.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter without read-modify-write races.
func (r *PGRepository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE blog_posts SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}
