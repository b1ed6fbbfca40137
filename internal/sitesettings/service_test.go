package sitesettings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
)

type mockRepository struct {
	row     *Settings
	creates int
}

func (m *mockRepository) GetOrCreate(ctx context.Context) (*Settings, error) {
	if m.row == nil {
		m.creates++
		m.row = &Settings{
			ID:              1,
			PhoneNumber:     "021-12345678",
			AIEnabled:       true,
			BookingsEnabled: true,
			HeroTitle:       "بازسازی هوشمند خانه شما",
		}
	}
	out := *m.row
	return &out, nil
}

func (m *mockRepository) Save(ctx context.Context, settings *Settings) (*Settings, error) {
	// Save only ever updates the existing row.
	saved := *settings
	saved.ID = m.row.ID
	m.row = &saved
	out := saved
	return &out, nil
}

var (
	userP  = authz.Principal{UserID: 7, Role: authz.RoleHomeowner}
	staffP = authz.Principal{UserID: 1, Role: authz.RoleAdmin, IsStaff: true}
)

func TestPublicGetCreatesSingletonOnce(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	first, err := svc.Get(context.Background(), authz.Anonymous())
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), userP)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.creates)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.AIEnabled)
}

func TestUpdateIsStaffOnly(t *testing.T) {
	svc := NewService(&mockRepository{})

	_, _, err := svc.Update(context.Background(), authz.Anonymous(), map[string]any{"hero_title": "x"})
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))

	_, _, err = svc.Update(context.Background(), userP, map[string]any{"hero_title": "x"})
	assert.True(t, errors.Is(err, httpx.ErrForbidden))
}

func TestStaffUpdateKeepsSingleRow(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo)

	updated, dropped, err := svc.Update(context.Background(), staffP, map[string]any{
		"hero_title":      "Renovate smarter",
		"ai_enabled":      false,
		"instagram_url":   "https://instagram.com/hermes",
		"unknown_feature": true,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"unknown_feature"}, dropped)
	assert.Equal(t, "Renovate smarter", updated.HeroTitle)
	assert.False(t, updated.AIEnabled)

	again, err := svc.Get(context.Background(), userP)
	require.NoError(t, err)
	assert.Equal(t, updated.ID, again.ID)
	assert.Equal(t, 1, repo.creates)
}
