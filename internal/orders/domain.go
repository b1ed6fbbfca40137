package orders

import "time"

// ServiceOrder is a renovation service request. Guest checkout is
// supported, so UserID may be zero (ownerless until claimed by staff).
type ServiceOrder struct {
	ID            int64
	UserID        int64
	ServiceTitle  string
	FullName      string
	Phone         string
	Description   string
	Status        string
	AdminNotes    string
	EstimatedCost string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Fields renders the order as a flat record; the caller's view spec
// projects it down to the visible set.
func (o *ServiceOrder) Fields() map[string]any {
	return map[string]any{
		"id":             o.ID,
		"user_id":        o.UserID,
		"service_title":  o.ServiceTitle,
		"full_name":      o.FullName,
		"phone":          o.Phone,
		"description":    o.Description,
		"status":         o.Status,
		"admin_notes":    o.AdminNotes,
		"estimated_cost": o.EstimatedCost,
		"created_at":     o.CreatedAt,
		"updated_at":     o.UpdatedAt,
	}
}

// ListFilter narrows order listings.
type ListFilter struct {
	Status  string
	Search  string
	Page    int
	PerPage int
}
