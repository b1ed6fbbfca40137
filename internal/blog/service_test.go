package blog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

type mockRepository struct {
	posts  map[int64]*Post
	slugs  map[string]int64
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		posts:  make(map[int64]*Post),
		slugs:  make(map[string]int64),
		nextID: 1,
	}
}

func (m *mockRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	if _, taken := m.slugs[post.Slug]; taken {
		return nil, httpx.ErrDuplicate
	}
	created := *post
	created.ID = m.nextID
	m.nextID++
	m.posts[created.ID] = &created
	m.slugs[created.Slug] = created.ID
	out := created
	return &out, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Post, error) {
	post, ok := m.posts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *post
	return &out, nil
}

func (m *mockRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	id, ok := m.slugs[slug]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *mockRepository) List(ctx context.Context, filter ListFilter) ([]Post, int, error) {
	var posts []Post
	for _, post := range m.posts {
		if !post.IsPublished {
			continue
		}
		posts = append(posts, *post)
	}
	return posts, len(posts), nil
}

func (m *mockRepository) Update(ctx context.Context, post *Post) (*Post, error) {
	old, ok := m.posts[post.ID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if id, taken := m.slugs[post.Slug]; taken && id != post.ID {
		return nil, httpx.ErrDuplicate
	}
	delete(m.slugs, old.Slug)
	updated := *post
	m.posts[post.ID] = &updated
	m.slugs[updated.Slug] = post.ID
	out := updated
	return &out, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	post, ok := m.posts[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(m.slugs, post.Slug)
	delete(m.posts, id)
	return nil
}

func (m *mockRepository) IncrementViews(ctx context.Context, id int64) error {
	post, ok := m.posts[id]
	if !ok {
		return shared.ErrNotFound
	}
	post.ViewCount++
	return nil
}

var (
	authorP = authz.Principal{UserID: 5, Role: authz.RoleProfessional}
	otherP  = authz.Principal{UserID: 6, Role: authz.RoleHomeowner}
	staffP  = authz.Principal{UserID: 1, Role: authz.RoleAdmin, IsStaff: true}
)

func TestSlugDerivedFromUnicodeTitle(t *testing.T) {
	svc := NewService(newMockRepository())
	post, err := svc.Create(context.Background(), authorP, CreateInput{Title: "بازسازی آشپزخانه مدرن", Content: "..."})
	require.NoError(t, err)
	assert.Equal(t, "بازسازی-آشپزخانه-مدرن", post.Slug)
	assert.Equal(t, authorP.UserID, post.AuthorID)
}

func TestSlugCollisionGetsSuffix(t *testing.T) {
	svc := NewService(newMockRepository())
	first, err := svc.Create(context.Background(), authorP, CreateInput{Title: "Paint Tips", Content: "a"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), authorP, CreateInput{Title: "Paint Tips", Content: "b"})
	require.NoError(t, err)

	assert.Equal(t, "paint-tips", first.Slug)
	assert.Equal(t, "paint-tips-2", second.Slug)
}

func TestUnpublishedHiddenFromPublic(t *testing.T) {
	svc := NewService(newMockRepository())
	unpublished := false
	post, err := svc.Create(context.Background(), authorP, CreateInput{Title: "Draft", Content: "wip", IsPublished: &unpublished})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), authz.Anonymous(), post.Slug)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
	_, err = svc.Get(context.Background(), otherP, post.Slug)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))

	got, err := svc.Get(context.Background(), authorP, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.Title)

	posts, _, err := svc.List(context.Background(), authz.Anonymous(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestRetrieveIncrementsViewCount(t *testing.T) {
	svc := NewService(newMockRepository())
	post, err := svc.Create(context.Background(), authorP, CreateInput{Title: "Lighting", Content: "..."})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), authz.Anonymous(), post.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)
}

func TestOnlyAuthorOrStaffEdits(t *testing.T) {
	svc := NewService(newMockRepository())
	post, err := svc.Create(context.Background(), authorP, CreateInput{Title: "Flooring", Content: "..."})
	require.NoError(t, err)

	_, _, err = svc.Update(context.Background(), otherP, post.ID, map[string]any{"title": "hijacked"})
	assert.True(t, errors.Is(err, httpx.ErrForbidden))

	updated, dropped, err := svc.Update(context.Background(), staffP, post.ID, map[string]any{
		"title":      "Flooring 101",
		"author_id":  float64(99),
		"view_count": float64(1000),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"author_id", "view_count"}, dropped)
	assert.Equal(t, "Flooring 101", updated.Title)
	assert.Equal(t, authorP.UserID, updated.AuthorID)
}
