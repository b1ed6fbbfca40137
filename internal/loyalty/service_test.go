package loyalty

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
)

type mockRepository struct {
	byUser map[int64]*Account
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{byUser: make(map[int64]*Account), nextID: 1}
}

func (m *mockRepository) GetOrCreate(ctx context.Context, userID int64, referralCode string) (*Account, error) {
	if account, ok := m.byUser[userID]; ok {
		out := *account
		return &out, nil
	}
	account := &Account{
		ID:           m.nextID,
		UserID:       userID,
		CurrentTier:  TierBronze,
		ReferralCode: referralCode,
	}
	m.nextID++
	m.byUser[userID] = account
	out := *account
	return &out, nil
}

var memberP = authz.Principal{UserID: 7, Role: authz.RoleHomeowner}

func TestFirstAccessCreatesAccount(t *testing.T) {
	svc := NewService(newMockRepository())
	account, err := svc.Account(context.Background(), memberP)
	require.NoError(t, err)
	assert.Equal(t, memberP.UserID, account.UserID)
	assert.Equal(t, TierBronze, account.CurrentTier)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F-]{8}$`), account.ReferralCode)
}

func TestRepeatAccessReturnsSameRow(t *testing.T) {
	svc := NewService(newMockRepository())
	first, err := svc.Account(context.Background(), memberP)
	require.NoError(t, err)
	second, err := svc.Account(context.Background(), memberP)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ReferralCode, second.ReferralCode)
}

func TestAnonymousDenied(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Account(context.Background(), authz.Anonymous())
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestReferralCodeShape(t *testing.T) {
	for i := 0; i < 20; i++ {
		code := NewReferralCode()
		assert.Len(t, code, 8)
		assert.Equal(t, code, regexp.MustCompile(`[^0-9A-F-]`).ReplaceAllString(code, ""))
	}
}
