package reviews

import "time"

// Review is a customer rating, shown publicly once verified by staff.
type Review struct {
	ID         int64
	UserID     int64
	UserName   string
	ProjectID  *int64
	Rating     int
	Comment    string
	IsVerified bool
	CreatedAt  time.Time
}

// Fields renders the review as a flat record for view projection.
func (r *Review) Fields() map[string]any {
	var project any
	if r.ProjectID != nil {
		project = *r.ProjectID
	}
	return map[string]any{
		"id":          r.ID,
		"project_id":  project,
		"rating":      r.Rating,
		"comment":     r.Comment,
		"is_verified": r.IsVerified,
		"created_at":  r.CreatedAt,
	}
}

// ListFilter narrows review listings.
type ListFilter struct {
	ProjectID int64
	Page      int
	PerPage   int
}
