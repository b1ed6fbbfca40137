package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// featuredLimit caps the featured strip on the landing page.
const featuredLimit = 6

// Service wraps portfolio business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries a new portfolio item.
type CreateInput struct {
	Title          string
	Description    string
	CoverImage     string
	Location       string
	CompletionDate *time.Time
	BeforeVideoURL string
	AfterVideoURL  string
	IsFeatured     bool
	Gallery        []Image
	Tags           []string
}

// Create publishes a portfolio item. The author is the principal.
func (s *Service) Create(ctx context.Context, p authz.Principal, in CreateInput) (*Item, error) {
	if d := authz.Authorize(p, authz.KindPortfolio, authz.ActionCreate, nil); !d.Allowed() {
		return nil, d.Err()
	}
	item, err := s.repo.Create(ctx, &Item{
		Title:          in.Title,
		Description:    in.Description,
		CoverImage:     in.CoverImage,
		Location:       in.Location,
		CompletionDate: in.CompletionDate,
		BeforeVideoURL: in.BeforeVideoURL,
		AfterVideoURL:  in.AfterVideoURL,
		CreatedBy:      p.UserID,
		IsFeatured:     in.IsFeatured,
	})
	if err != nil {
		return nil, err
	}
	return s.saveRelations(ctx, item, in.Gallery, in.Tags)
}

func (s *Service) saveRelations(ctx context.Context, item *Item, gallery []Image, tags []string) (*Item, error) {
	if gallery != nil {
		if err := s.repo.ReplaceGallery(ctx, item.ID, gallery); err != nil {
			return nil, err
		}
	}
	if tags != nil {
		if _, err := s.repo.AttachTags(ctx, item.ID, tags); err != nil {
			return nil, err
		}
	}
	if gallery == nil && tags == nil {
		return item, nil
	}
	return s.repo.GetByID(ctx, item.ID)
}

// Get retrieves one item and bumps its view counter.
func (s *Service) Get(ctx context.Context, p authz.Principal, id int64) (*Item, error) {
	if d := authz.Authorize(p, authz.KindPortfolio, authz.ActionRetrieve, nil); !d.Allowed() {
		return nil, d.Err()
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	item.ViewCount++
	return item, nil
}

// List returns items matching the filter; readable by anyone.
func (s *Service) List(ctx context.Context, p authz.Principal, filter ListFilter) ([]Item, int, error) {
	if d := authz.Authorize(p, authz.KindPortfolio, authz.ActionList, nil); !d.Allowed() {
		return nil, 0, d.Err()
	}
	return s.repo.List(ctx, filter)
}

// Featured returns the newest featured items for the landing page.
func (s *Service) Featured(ctx context.Context, p authz.Principal) ([]Item, error) {
	if d := authz.Authorize(p, authz.KindPortfolio, authz.ActionFeatured, nil); !d.Allowed() {
		return nil, d.Err()
	}
	return s.repo.Featured(ctx, featuredLimit)
}

// UpdateInput carries a masked item update alongside relation swaps.
type UpdateInput struct {
	Payload map[string]any
	Gallery []Image
	Tags    []string
}

// Update applies a masked payload; authors edit their own items, staff any.
func (s *Service) Update(ctx context.Context, p authz.Principal, id int64, in UpdateInput) (*Item, []string, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, httpx.ErrNotFound
		}
		return nil, nil, err
	}
	if d := authz.Authorize(p, authz.KindPortfolio, authz.ActionPartialUpdate, &authz.ResourceRef{OwnerID: item.CreatedBy}); !d.Allowed() {
		return nil, nil, d.Err()
	}

	spec := authz.SelectView(p, authz.KindPortfolio, authz.ActionPartialUpdate)
	dropped := spec.Mask(in.Payload)

	if v, ok := in.Payload["title"].(string); ok {
		item.Title = v
	}
	if v, ok := in.Payload["description"].(string); ok {
		item.Description = v
	}
	if v, ok := in.Payload["cover_image"].(string); ok {
		item.CoverImage = v
	}
	if v, ok := in.Payload["location"].(string); ok {
		item.Location = v
	}
	if v, ok := in.Payload["completion_date"].(string); ok {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, dropped, httpx.ErrValidation
		}
		item.CompletionDate = &date
	}
	if v, ok := in.Payload["before_video_url"].(string); ok {
		item.BeforeVideoURL = v
	}
	if v, ok := in.Payload["after_video_url"].(string); ok {
		item.AfterVideoURL = v
	}
	if v, ok := in.Payload["is_featured"].(bool); ok {
		item.IsFeatured = v
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, dropped, err
	}
	updated, err = s.saveRelations(ctx, updated, in.Gallery, in.Tags)
	if err != nil {
		return nil, dropped, err
	}
	return updated, dropped, nil
}

// Delete removes an item; authors their own, staff any.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id int64) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	if d := authz.Authorize(p, authz.KindPortfolio, authz.ActionDestroy, &authz.ResourceRef{OwnerID: item.CreatedBy}); !d.Allowed() {
		return d.Err()
	}
	return s.repo.Delete(ctx, id)
}
