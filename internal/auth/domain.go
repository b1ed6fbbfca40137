package auth

import "time"

// User represents an account on the platform.
type User struct {
	ID           int64
	Email        string
	FullName     string
	Phone        string
	Role         string
	IsStaff      bool
	PasswordHash string
	AvatarURL    string
	IsActive     bool
	LastLoginIP  string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the JSON projection of an account.
type PublicUser struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Phone     string     `json:"phone,omitempty"`
	Role      string     `json:"role"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// Public maps a User onto its JSON projection. Email, id, and timestamps
// are read-only on the wire; see the profile view spec.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLoginAt,
	}
}
