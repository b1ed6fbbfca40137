package portfolio

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hermes-renovation/hermes/internal/platform/db"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Repository defines persistence operations for portfolio items.
type Repository interface {
	Create(ctx context.Context, item *Item) (*Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context, filter ListFilter) ([]Item, int, error)
	Featured(ctx context.Context, limit int) ([]Item, error)
	Update(ctx context.Context, item *Item) (*Item, error)
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	ReplaceGallery(ctx context.Context, itemID int64, images []Image) error
	AttachTags(ctx context.Context, itemID int64, names []string) ([]Tag, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const itemColumns = `id, title, description, COALESCE(cover_image, ''), COALESCE(location, ''),
	completion_date, COALESCE(before_video_url, ''), COALESCE(after_video_url, ''),
	COALESCE(created_by, 0), is_featured, view_count, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Title, &it.Description, &it.CoverImage, &it.Location,
		&it.CompletionDate, &it.BeforeVideoURL, &it.AfterVideoURL,
		&it.CreatedBy, &it.IsFeatured, &it.ViewCount, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// Create inserts a portfolio item.
func (r *PGRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO portfolio_items (title, description, cover_image, location, completion_date,
		    before_video_url, after_video_url, created_by, is_featured)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, 0), $9)
		 RETURNING id`,
		item.Title, item.Description, item.CoverImage, item.Location, item.CompletionDate,
		item.BeforeVideoURL, item.AfterVideoURL, item.CreatedBy, item.IsFeatured).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID loads one item with its gallery and tags.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM portfolio_items WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PGRepository) loadRelations(ctx context.Context, item *Item) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, image_url, COALESCE(caption, ''), sort_order
		 FROM portfolio_images WHERE portfolio_id = $1 ORDER BY sort_order`, item.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ImageURL, &img.Caption, &img.Order); err != nil {
			return err
		}
		item.Gallery = append(item.Gallery, img)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tagRows, err := r.pool.Query(ctx,
		`SELECT t.id, t.name, t.slug
		 FROM portfolio_tags t
		 JOIN portfolio_item_tags it ON it.tag_id = t.id
		 WHERE it.portfolio_id = $1 ORDER BY t.name`, item.ID)
	if err != nil {
		return err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tag Tag
		if err := tagRows.Scan(&tag.ID, &tag.Name, &tag.Slug); err != nil {
			return err
		}
		item.Tags = append(item.Tags, tag)
	}
	return tagRows.Err()
}

// List returns items matching the filter, newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Item, int, error) {
	featured := -1
	if filter.Featured != nil {
		featured = 0
		if *filter.Featured {
			featured = 1
		}
	}
	where := ` WHERE ($1 = -1 OR is_featured = ($1 = 1))
	    AND ($2 = '' OR location ILIKE '%' || $2 || '%')
	    AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM portfolio_items`+where,
		featured, filter.Location, filter.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM portfolio_items`+where+
			` ORDER BY created_at DESC LIMIT $4 OFFSET $5`,
		featured, filter.Location, filter.Search, perPage, shared.Offset(filter.Page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range items {
		if err := r.loadRelations(ctx, &items[i]); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// Featured returns the newest featured items up to limit.
func (r *PGRepository) Featured(ctx context.Context, limit int) ([]Item, error) {
	yes := true
	items, _, err := r.List(ctx, ListFilter{Featured: &yes, PerPage: limit})
	return items, err
}

// Update persists item fields.
func (r *PGRepository) Update(ctx context.Context, item *Item) (*Item, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE portfolio_items SET
		    title = $2, description = $3, cover_image = NULLIF($4, ''), location = NULLIF($5, ''),
		    completion_date = $6, before_video_url = NULLIF($7, ''), after_video_url = NULLIF($8, ''),
		    is_featured = $9, updated_at = NOW()
		 WHERE id = $1`,
		item.ID, item.Title, item.Description, item.CoverImage, item.Location,
		item.CompletionDate, item.BeforeVideoURL, item.AfterVideoURL, item.IsFeatured)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetByID(ctx, item.ID)
}

// Delete removes an item; gallery rows and tag links cascade.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM portfolio_items WHERE id = $1`, id)
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
		`UPDATE portfolio_items SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

// ReplaceGallery swaps the full gallery of an item in one transaction.
func (r *PGRepository) ReplaceGallery(ctx context.Context, itemID int64, images []Image) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM portfolio_images WHERE portfolio_id = $1`, itemID); err != nil {
			return err
		}
		for _, img := range images {
			if _, err := tx.Exec(ctx,
				`INSERT INTO portfolio_images (portfolio_id, image_url, caption, sort_order)
				 VALUES ($1, $2, NULLIF($3, ''), $4)`,
				itemID, img.ImageURL, img.Caption, img.Order); err != nil {
				return err
			}
		}
		return nil
	})
}

// AttachTags links the named tags to an item, creating missing tags.
// Tag slugs are unique; a concurrent insert loser re-reads the winner.
func (r *PGRepository) AttachTags(ctx context.Context, itemID int64, names []string) ([]Tag, error) {
	var tags []Tag
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM portfolio_item_tags WHERE portfolio_id = $1`, itemID); err != nil {
			return err
		}
		for _, name := range names {
			slug := shared.Slugify(name)
			if slug == "" {
				continue
			}
			var tag Tag
			err := tx.QueryRow(ctx,
				`INSERT INTO portfolio_tags (name, slug) VALUES ($1, $2)
				 ON CONFLICT (slug) DO UPDATE SET name = portfolio_tags.name
				 RETURNING id, name, slug`, name, slug).Scan(&tag.ID, &tag.Name, &tag.Slug)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO portfolio_item_tags (portfolio_id, tag_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`, itemID, tag.ID); err != nil {
				return err
			}
			tags = append(tags, tag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
