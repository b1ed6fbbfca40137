package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Service wraps blog business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries a new post.
type CreateInput struct {
	Title       string
	Slug        string
	Content     string
	CoverImage  string
	Tags        string
	IsPublished *bool
}

// Create publishes a post. The author is the principal; an omitted slug
// is derived from the title, and collisions get a numeric suffix.
func (s *Service) Create(ctx context.Context, p authz.Principal, in CreateInput) (*Post, error) {
	if d := authz.Authorize(p, authz.KindBlogPost, authz.ActionCreate, nil); !d.Allowed() {
		return nil, d.Err()
	}
	slug := in.Slug
	if slug == "" {
		slug = shared.Slugify(in.Title)
	}
	if slug == "" {
		return nil, httpx.ErrValidation
	}
	published := true
	if in.IsPublished != nil {
		published = *in.IsPublished
	}
	post := &Post{
		Title:       in.Title,
		AuthorID:    p.UserID,
		Content:     in.Content,
		CoverImage:  in.CoverImage,
		Tags:        in.Tags,
		IsPublished: published,
	}
	for i := 0; i < 5; i++ {
		post.Slug = slug
		if i > 0 {
			post.Slug = fmt.Sprintf("%s-%d", slug, i+1)
		}
		created, err := s.repo.Create(ctx, post)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, httpx.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, httpx.ErrDuplicate
}

// Get retrieves one published post and bumps its view counter. Authors
// and staff also see their unpublished drafts.
func (s *Service) Get(ctx context.Context, p authz.Principal, slug string) (*Post, error) {
	if d := authz.Authorize(p, authz.KindBlogPost, authz.ActionRetrieve, nil); !d.Allowed() {
		return nil, d.Err()
	}
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if !post.IsPublished && !p.IsStaff && post.AuthorID != p.UserID {
		return nil, httpx.ErrNotFound
	}
	if err := s.repo.IncrementViews(ctx, post.ID); err != nil {
		return nil, err
	}
	post.ViewCount++
	return post, nil
}

// List returns published posts; readable by anyone.
func (s *Service) List(ctx context.Context, p authz.Principal, filter ListFilter) ([]Post, int, error) {
	if d := authz.Authorize(p, authz.KindBlogPost, authz.ActionList, nil); !d.Allowed() {
		return nil, 0, d.Err()
	}
	return s.repo.List(ctx, filter)
}

// Update applies a masked payload; authors edit their own posts, staff any.
func (s *Service) Update(ctx context.Context, p authz.Principal, id int64, payload map[string]any) (*Post, []string, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, httpx.ErrNotFound
		}
		return nil, nil, err
	}
	if d := authz.Authorize(p, authz.KindBlogPost, authz.ActionPartialUpdate, &authz.ResourceRef{OwnerID: post.AuthorID}); !d.Allowed() {
		return nil, nil, d.Err()
	}

	spec := authz.SelectView(p, authz.KindBlogPost, authz.ActionPartialUpdate)
	dropped := spec.Mask(payload)

	if v, ok := payload["title"].(string); ok {
		post.Title = v
	}
	if v, ok := payload["slug"].(string); ok {
		if slug := shared.Slugify(v); slug != "" {
			post.Slug = slug
		}
	}
	if v, ok := payload["content"].(string); ok {
		post.Content = v
	}
	if v, ok := payload["cover_image"].(string); ok {
		post.CoverImage = v
	}
	if v, ok := payload["tags"].(string); ok {
		post.Tags = v
	}
	if v, ok := payload["is_published"].(bool); ok {
		post.IsPublished = v
	}

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		return nil, dropped, err
	}
	return updated, dropped, nil
}

// Delete removes a post; authors their own, staff any.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id int64) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	if d := authz.Authorize(p, authz.KindBlogPost, authz.ActionDestroy, &authz.ResourceRef{OwnerID: post.AuthorID}); !d.Allowed() {
		return d.Err()
	}
	return s.repo.Delete(ctx, id)
}
