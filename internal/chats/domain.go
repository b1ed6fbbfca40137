package chats

import "time"

// Session is one AI chat conversation owned by a user.
type Session struct {
	ID        int64
	UserID    int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields renders the session as a flat record for view projection.
func (s *Session) Fields() map[string]any {
	return map[string]any{
		"id":         s.ID,
		"title":      s.Title,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	}
}

// Message roles accepted on chat messages.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn inside a session.
type Message struct {
	ID        int64
	SessionID int64
	Role      string
	Text      string
	ImageURL  string
	CreatedAt time.Time
}

// Fields renders the message as a flat record for view projection.
func (m *Message) Fields() map[string]any {
	return map[string]any{
		"id":         m.ID,
		"role":       m.Role,
		"text":       m.Text,
		"image_url":  m.ImageURL,
		"created_at": m.CreatedAt,
	}
}
