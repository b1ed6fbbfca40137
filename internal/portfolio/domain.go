package portfolio

import "time"

// Item is a completed renovation project shown on the public site.
type Item struct {
	ID             int64
	Title          string
	Description    string
	CoverImage     string
	Location       string
	CompletionDate *time.Time
	BeforeVideoURL string
	AfterVideoURL  string
	CreatedBy      int64
	IsFeatured     bool
	ViewCount      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Gallery []Image
	Tags    []Tag
}

// Image is one ordered gallery entry of an item.
type Image struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption,omitempty"`
	Order    int    `json:"order"`
}

// Tag labels items; slugs are unique and unicode-friendly.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Fields renders the item as a flat record for view projection.
func (it *Item) Fields() map[string]any {
	var completed any
	if it.CompletionDate != nil {
		completed = it.CompletionDate.Format("2006-01-02")
	}
	gallery := it.Gallery
	if gallery == nil {
		gallery = []Image{}
	}
	tags := it.Tags
	if tags == nil {
		tags = []Tag{}
	}
	return map[string]any{
		"id":               it.ID,
		"title":            it.Title,
		"description":      it.Description,
		"cover_image":      it.CoverImage,
		"location":         it.Location,
		"completion_date":  completed,
		"before_video_url": it.BeforeVideoURL,
		"after_video_url":  it.AfterVideoURL,
		"is_featured":      it.IsFeatured,
		"view_count":       it.ViewCount,
		"gallery_images":   gallery,
		"tags":             tags,
		"created_at":       it.CreatedAt,
		"updated_at":       it.UpdatedAt,
	}
}

// ListFilter narrows portfolio listings.
type ListFilter struct {
	Featured *bool
	Location string
	Search   string
	Page     int
	PerPage  int
}
