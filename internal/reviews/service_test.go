package reviews

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
	reviews map[int64]*Review
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{reviews: make(map[int64]*Review), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, review *Review) (*Review, error) {
	created := *review
	created.ID = m.nextID
	created.IsVerified = false
	m.nextID++
	m.reviews[created.ID] = &created
	out := created
	return &out, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Review, error) {
	review, ok := m.reviews[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *review
	return &out, nil
}

func (m *mockRepository) List(ctx context.Context, verifiedOnly bool, filter ListFilter) ([]Review, int, error) {
	var items []Review
	for _, review := range m.reviews {
		if verifiedOnly && !review.IsVerified {
			continue
		}
		items = append(items, *review)
	}
	return items, len(items), nil
}

func (m *mockRepository) Update(ctx context.Context, review *Review) (*Review, error) {
	if _, ok := m.reviews[review.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	updated := *review
	m.reviews[review.ID] = &updated
	out := updated
	return &out, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.reviews[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

var (
	reviewerP = authz.Principal{UserID: 5, Role: authz.RoleHomeowner}
	otherP    = authz.Principal{UserID: 6, Role: authz.RoleHomeowner}
	staffP    = authz.Principal{UserID: 1, Role: authz.RoleAdmin, IsStaff: true}
)

func TestRatingBounds(t *testing.T) {
	svc := NewService(newMockRepository())
	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(context.Background(), reviewerP, CreateInput{Rating: rating, Comment: "x"})
		assert.True(t, errors.Is(err, httpx.ErrValidation), "rating %d", rating)
	}
	review, err := svc.Create(context.Background(), reviewerP, CreateInput{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, reviewerP.UserID, review.UserID)
	assert.False(t, review.IsVerified)
}

func TestPublicFeedIsVerifiedOnly(t *testing.T) {
	svc := NewService(newMockRepository())
	review, err := svc.Create(context.Background(), reviewerP, CreateInput{Rating: 4, Comment: "solid"})
	require.NoError(t, err)

	items, _, err := svc.List(context.Background(), authz.Anonymous(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.Verify(context.Background(), staffP, review.ID, true)
	require.NoError(t, err)

	items, _, err = svc.List(context.Background(), authz.Anonymous(), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUnverifiedHiddenFromOthers(t *testing.T) {
	svc := NewService(newMockRepository())
	review, err := svc.Create(context.Background(), reviewerP, CreateInput{Rating: 3, Comment: "ok"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), otherP, review.ID)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))

	got, err := svc.Get(context.Background(), reviewerP, review.ID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, got.ID)
}

func TestVerifyIsStaffOnly(t *testing.T) {
	svc := NewService(newMockRepository())
	review, err := svc.Create(context.Background(), reviewerP, CreateInput{Rating: 5, Comment: "nice"})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), reviewerP, review.ID, true)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))

	// The flag is also unreachable through a plain update.
	updated, dropped, err := svc.Update(context.Background(), reviewerP, review.ID, map[string]any{
		"comment":     "edited",
		"is_verified": true,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"is_verified"}, dropped)
	assert.False(t, updated.IsVerified)
}
