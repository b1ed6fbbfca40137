package accounts

import (
	"context"

	"github.com/hermes-renovation/hermes/internal/auth"
	"github.com/hermes-renovation/hermes/internal/authz"
)

// Service wraps account profile and activity rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Profile returns the caller's profile, creating it on first access.
func (s *Service) Profile(ctx context.Context, p authz.Principal) (*Profile, error) {
	if d := authz.Authorize(p, authz.KindUserProfile, authz.ActionRetrieve, &authz.ResourceRef{OwnerID: p.UserID}); !d.Allowed() {
		return nil, d.Err()
	}
	return s.repo.GetOrCreateProfile(ctx, p.UserID)
}

// UpdateProfile patches the caller's profile.
func (s *Service) UpdateProfile(ctx context.Context, p authz.Principal, patch ProfilePatch) (*Profile, error) {
	if d := authz.Authorize(p, authz.KindUserProfile, authz.ActionPartialUpdate, &authz.ResourceRef{OwnerID: p.UserID}); !d.Allowed() {
		return nil, d.Err()
	}
	return s.repo.UpdateProfile(ctx, p.UserID, patch)
}

// Activities lists the caller's own activity log.
func (s *Service) Activities(ctx context.Context, p authz.Principal, page, perPage int) ([]Activity, int, error) {
	d := authz.Authorize(p, authz.KindUserActivity, authz.ActionList, nil)
	if d == authz.DecisionEmpty {
		return []Activity{}, 0, nil
	}
	if !d.Allowed() {
		return nil, 0, d.Err()
	}
	return s.repo.ListActivities(ctx, p.UserID, perPage, (page-1)*perPage)
}

// Record implements auth.ActivityRecorder.
func (s *Service) Record(ctx context.Context, userID int64, action, details, ip string) error {
	return s.repo.RecordActivity(ctx, Activity{UserID: userID, Action: action, Details: details, IPAddress: ip})
}

// ListUsers returns accounts for the staff user listing.
func (s *Service) ListUsers(ctx context.Context, p authz.Principal, filter ListUsersFilter) ([]auth.User, int, error) {
	if !p.IsStaff {
		return nil, 0, authz.DecisionForbidden.Err()
	}
	return s.repo.ListUsers(ctx, filter)
}
