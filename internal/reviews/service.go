package reviews

import (
	"context"
	"errors"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Service wraps review business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries a new review.
type CreateInput struct {
	ProjectID *int64
	Rating    int
	Comment   string
}

// Create records a review for the caller. It stays hidden from the
// public feed until staff verifies it.
func (s *Service) Create(ctx context.Context, p authz.Principal, in CreateInput) (*Review, error) {
	if d := authz.Authorize(p, authz.KindReview, authz.ActionCreate, nil); !d.Allowed() {
		return nil, d.Err()
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, httpx.ErrValidation
	}
	return s.repo.Create(ctx, &Review{
		UserID:    p.UserID,
		ProjectID: in.ProjectID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})
}

// Get retrieves one review. Unverified reviews stay visible to their
// author and staff only.
func (s *Service) Get(ctx context.Context, p authz.Principal, id int64) (*Review, error) {
	if d := authz.Authorize(p, authz.KindReview, authz.ActionRetrieve, nil); !d.Allowed() {
		return nil, d.Err()
	}
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if !review.IsVerified && !p.IsStaff && review.UserID != p.UserID {
		return nil, httpx.ErrNotFound
	}
	return review, nil
}

// List returns verified reviews; staff see everything.
func (s *Service) List(ctx context.Context, p authz.Principal, filter ListFilter) ([]Review, int, error) {
	if d := authz.Authorize(p, authz.KindReview, authz.ActionList, nil); !d.Allowed() {
		return nil, 0, d.Err()
	}
	return s.repo.List(ctx, !p.IsStaff, filter)
}

// Update applies a masked payload; authors edit their own reviews, staff any.
func (s *Service) Update(ctx context.Context, p authz.Principal, id int64, payload map[string]any) (*Review, []string, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, httpx.ErrNotFound
		}
		return nil, nil, err
	}
	if d := authz.Authorize(p, authz.KindReview, authz.ActionPartialUpdate, &authz.ResourceRef{OwnerID: review.UserID}); !d.Allowed() {
		return nil, nil, d.Err()
	}

	spec := authz.SelectView(p, authz.KindReview, authz.ActionPartialUpdate)
	dropped := spec.Mask(payload)

	if v, ok := payload["rating"].(float64); ok {
		rating := int(v)
		if rating < 1 || rating > 5 {
			return nil, dropped, httpx.ErrValidation
		}
		review.Rating = rating
	}
	if v, ok := payload["comment"].(string); ok {
		review.Comment = v
	}

	updated, err := s.repo.Update(ctx, review)
	if err != nil {
		return nil, dropped, err
	}
	return updated, dropped, nil
}

// Verify marks a review as verified so it enters the public feed.
// Staff only; the flag is unreachable through plain updates.
func (s *Service) Verify(ctx context.Context, p authz.Principal, id int64, verified bool) (*Review, error) {
	if d := authz.Authorize(p, authz.KindReview, authz.ActionUpdateStatus, nil); !d.Allowed() {
		return nil, d.Err()
	}
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	review.IsVerified = verified
	return s.repo.Update(ctx, review)
}

// Delete removes a review; authors their own, staff any.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id int64) error {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	if d := authz.Authorize(p, authz.KindReview, authz.ActionDestroy, &authz.ResourceRef{OwnerID: review.UserID}); !d.Allowed() {
		return d.Err()
	}
	return s.repo.Delete(ctx, id)
}
