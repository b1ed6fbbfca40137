package blog

import "time"

// Post is an educational article on the public site.
type Post struct {
	ID          int64
	Title       string
	Slug        string
	AuthorID    int64
	Content     string
	CoverImage  string
	Tags        string
	IsPublished bool
	ViewCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Fields renders the post as a flat record for view projection.
func (p *Post) Fields() map[string]any {
	return map[string]any{
		"id":           p.ID,
		"title":        p.Title,
		"slug":         p.Slug,
		"content":      p.Content,
		"cover_image":  p.CoverImage,
		"tags":         p.Tags,
		"is_published": p.IsPublished,
		"view_count":   p.ViewCount,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	}
}

// ListFilter narrows post listings.
type ListFilter struct {
	Search  string
	Page    int
	PerPage int
}
