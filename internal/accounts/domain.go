package accounts

import "time"

// Profile is the extended per-user profile. Exactly one row exists per
// user; first access creates it.
type Profile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Bio                string    `json:"bio,omitempty"`
	Address            string    `json:"address,omitempty"`
	NationalCode       string    `json:"national_code,omitempty"`
	CompanyName        string    `json:"company_name,omitempty"`
	LicenseNumber      string    `json:"license_number,omitempty"`
	Specialties        []string  `json:"specialties"`
	EmailNotifications bool      `json:"email_notifications"`
	SMSNotifications   bool      `json:"sms_notifications"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Activity is one entry in a user's activity log.
type Activity struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsersFilter narrows the admin user listing.
type ListUsersFilter struct {
	Role    string
	Search  string
	Page    int
	PerPage int
}
