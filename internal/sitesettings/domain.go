package sitesettings

import "time"

// Settings is the single global configuration row for the public site.
type Settings struct {
	ID              int64
	InstagramURL    string
	TelegramURL     string
	WhatsappURL     string
	PhoneNumber     string
	Address         string
	Email           string
	AIEnabled       bool
	BookingsEnabled bool
	HeroTitle       string
	HeroSubtitle    string
	EnamadURL       string
	UpdatedAt       time.Time
}

// Fields renders the settings as a flat record for view projection.
func (s *Settings) Fields() map[string]any {
	return map[string]any{
		"instagram_url":    s.InstagramURL,
		"telegram_url":     s.TelegramURL,
		"whatsapp_url":     s.WhatsappURL,
		"phone_number":     s.PhoneNumber,
		"address":          s.Address,
		"email":            s.Email,
		"ai_enabled":       s.AIEnabled,
		"bookings_enabled": s.BookingsEnabled,
		"hero_title":       s.HeroTitle,
		"hero_subtitle":    s.HeroSubtitle,
		"enamad_url":       s.EnamadURL,
		"updated_at":       s.UpdatedAt,
	}
}
