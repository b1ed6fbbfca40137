package bookings

import "time"

// Booking is a scheduled site visit. The (date, time_slot) pair is
// unique platform-wide to prevent double booking.
type Booking struct {
	ID          int64
	UserID      int64
	Date        time.Time
	TimeSlot    string
	Address     string
	Description string
	Status      string
	AdminNotes  string
	CreatedAt   time.Time
}

// Fields renders the booking as a flat record for view projection.
func (b *Booking) Fields() map[string]any {
	return map[string]any{
		"id":          b.ID,
		"user_id":     b.UserID,
		"date":        b.Date.Format("2006-01-02"),
		"time_slot":   b.TimeSlot,
		"address":     b.Address,
		"description": b.Description,
		"status":      b.Status,
		"admin_notes": b.AdminNotes,
		"created_at":  b.CreatedAt,
	}
}

// ListFilter narrows booking listings.
type ListFilter struct {
	Status  string
	Page    int
	PerPage int
}
