package sitesettings

import (
	"context"

	"github.com/hermes-renovation/hermes/internal/authz"
)

// Service wraps settings business rules: public reads, staff writes,
// one row forever.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the global settings, creating the row on first access.
func (s *Service) Get(ctx context.Context, p authz.Principal) (*Settings, error) {
	if d := authz.Authorize(p, authz.KindSiteSettings, authz.ActionRetrieve, nil); !d.Allowed() {
		return nil, d.Err()
	}
	return s.repo.GetOrCreate(ctx)
}

// Update applies a masked payload to the singleton. Staff only.
func (s *Service) Update(ctx context.Context, p authz.Principal, payload map[string]any) (*Settings, []string, error) {
	if d := authz.Authorize(p, authz.KindSiteSettings, authz.ActionPartialUpdate, nil); !d.Allowed() {
		return nil, nil, d.Err()
	}
	settings, err := s.repo.GetOrCreate(ctx)
	if err != nil {
		return nil, nil, err
	}

	spec := authz.SelectView(p, authz.KindSiteSettings, authz.ActionPartialUpdate)
	dropped := spec.Mask(payload)

	if v, ok := payload["instagram_url"].(string); ok {
		settings.InstagramURL = v
	}
	if v, ok := payload["telegram_url"].(string); ok {
		settings.TelegramURL = v
	}
	if v, ok := payload["whatsapp_url"].(string); ok {
		settings.WhatsappURL = v
	}
	if v, ok := payload["phone_number"].(string); ok {
		settings.PhoneNumber = v
	}
	if v, ok := payload["address"].(string); ok {
		settings.Address = v
	}
	if v, ok := payload["email"].(string); ok {
		settings.Email = v
	}
	if v, ok := payload["ai_enabled"].(bool); ok {
		settings.AIEnabled = v
	}
	if v, ok := payload["bookings_enabled"].(bool); ok {
		settings.BookingsEnabled = v
	}
	if v, ok := payload["hero_title"].(string); ok {
		settings.HeroTitle = v
	}
	if v, ok := payload["hero_subtitle"].(string); ok {
		settings.HeroSubtitle = v
	}
	if v, ok := payload["enamad_url"].(string); ok {
		settings.EnamadURL = v
	}

	updated, err := s.repo.Save(ctx, settings)
	if err != nil {
		return nil, dropped, err
	}
	return updated, dropped, nil
}
