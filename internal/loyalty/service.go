package loyalty

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/hermes-renovation/hermes/internal/authz"
)

// Service wraps loyalty business rules. The API surface is read-only;
// points and tiers change through backend processes, never requests.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewReferralCode mints an 8-char uppercase referral code.
func NewReferralCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Account returns the caller's loyalty account, creating it on first
// access.
func (s *Service) Account(ctx context.Context, p authz.Principal) (*Account, error) {
	if d := authz.Authorize(p, authz.KindLoyalty, authz.ActionRetrieve, &authz.ResourceRef{OwnerID: p.UserID}); !d.Allowed() {
		return nil, d.Err()
	}
	return s.repo.GetOrCreate(ctx, p.UserID, NewReferralCode())
}
