package orders

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
	orders map[int64]*ServiceOrder
	emails map[int64]string
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		orders: make(map[int64]*ServiceOrder),
		emails: make(map[int64]string),
		nextID: 1,
	}
}

func (m *mockRepository) Create(ctx context.Context, o *ServiceOrder) (*ServiceOrder, error) {
	created := *o
	created.ID = m.nextID
	created.Status = authz.OrderPending
	m.nextID++
	m.orders[created.ID] = &created
	out := created
	return &out, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*ServiceOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (m *mockRepository) List(ctx context.Context, ownerID int64, filter ListFilter) ([]ServiceOrder, int, error) {
	var items []ServiceOrder
	for _, o := range m.orders {
		if ownerID != 0 && o.UserID != ownerID {
			continue
		}
		items = append(items, *o)
	}
	return items, len(items), nil
}

func (m *mockRepository) Update(ctx context.Context, o *ServiceOrder) (*ServiceOrder, error) {
	if _, ok := m.orders[o.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	updated := *o
	m.orders[o.ID] = &updated
	out := updated
	return &out, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status string) (*ServiceOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	o.Status = status
	out := *o
	return &out, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockRepository) OwnerEmail(ctx context.Context, orderID int64) (string, error) {
	return m.emails[orderID], nil
}

type mockNotifier struct {
	sent []string
}

func (m *mockNotifier) NotifyOrderStatus(ctx context.Context, email string, orderID int64, status string) error {
	m.sent = append(m.sent, email+":"+status)
	return nil
}

var (
	staff = authz.Principal{UserID: 1, Role: authz.RoleAdmin, IsStaff: true}
	owner = authz.Principal{UserID: 7, Role: authz.RoleHomeowner}
	other = authz.Principal{UserID: 8, Role: authz.RoleHomeowner}
	guest = authz.Anonymous()
)

func TestGuestCreatesOwnerlessOrder(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)

	order, err := svc.Create(context.Background(), guest, CreateInput{
		ServiceTitle: "Bathroom renovation",
		FullName:     "Ali",
		Phone:        "0912xxxxxxx",
	})
	require.NoError(t, err)
	assert.Zero(t, order.UserID)
	assert.Equal(t, authz.OrderPending, order.Status)

	// The same anonymous caller cannot read the order back.
	_, err = svc.Get(context.Background(), guest, order.ID)
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestAuthenticatedCreateForceSetsOwner(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)

	order, err := svc.Create(context.Background(), owner, CreateInput{
		ServiceTitle: "Kitchen",
		FullName:     "Sara",
		Phone:        "0912xxxxxxx",
	})
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, order.UserID)
}

func TestNonOwnerGetsNotFound(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)

	order, err := svc.Create(context.Background(), owner, CreateInput{ServiceTitle: "x", FullName: "y", Phone: "z"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), other, order.ID)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))

	items, total, err := svc.List(context.Background(), other, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestAnonymousListIsEmpty(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)
	_, _ = svc.Create(context.Background(), owner, CreateInput{ServiceTitle: "x", FullName: "y", Phone: "z"})

	items, total, err := svc.List(context.Background(), guest, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestStaffListSeesEverything(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)
	_, _ = svc.Create(context.Background(), owner, CreateInput{ServiceTitle: "a", FullName: "y", Phone: "z"})
	_, _ = svc.Create(context.Background(), guest, CreateInput{ServiceTitle: "b", FullName: "y", Phone: "z"})

	items, total, err := svc.List(context.Background(), staff, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, total)
}

func TestOwnerUpdateMasksPrivilegedFields(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)

	order, err := svc.Create(context.Background(), owner, CreateInput{ServiceTitle: "x", FullName: "y", Phone: "z"})
	require.NoError(t, err)

	updated, dropped, err := svc.Update(context.Background(), owner, order.ID, map[string]any{
		"description":    "bigger scope",
		"status":         "COMPLETED",
		"estimated_cost": "123456",
		"admin_notes":    "sneaky",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"status", "estimated_cost", "admin_notes"}, dropped)
	assert.Equal(t, "bigger scope", updated.Description)
	assert.Equal(t, authz.OrderPending, updated.Status)
	assert.Empty(t, updated.AdminNotes)
}

func TestStaffUpdateWritesPrivilegedFields(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)

	order, err := svc.Create(context.Background(), owner, CreateInput{ServiceTitle: "x", FullName: "y", Phone: "z"})
	require.NoError(t, err)

	updated, dropped, err := svc.Update(context.Background(), staff, order.ID, map[string]any{
		"status":      "CONTACTED",
		"admin_notes": "called client",
	})
	require.NoError(t, err)
	assert.NotContains(t, dropped, "status")
	assert.Equal(t, "CONTACTED", updated.Status)
	assert.Equal(t, "called client", updated.AdminNotes)
}

func TestUpdateStatusStaffOnly(t *testing.T) {
	repo := newMockRepository()
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier, nil, nil)

	order, err := svc.Create(context.Background(), owner, CreateInput{ServiceTitle: "x", FullName: "y", Phone: "z"})
	require.NoError(t, err)
	repo.emails[order.ID] = "owner@test.local"

	_, err = svc.UpdateStatus(context.Background(), owner, order.ID, "COMPLETED")
	assert.True(t, errors.Is(err, httpx.ErrForbidden))

	updated, err := svc.UpdateStatus(context.Background(), staff, order.ID, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", updated.Status)
	assert.Equal(t, []string{"owner@test.local:COMPLETED"}, notifier.sent)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)

	order, err := svc.Create(context.Background(), owner, CreateInput{ServiceTitle: "x", FullName: "y", Phone: "z"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), staff, order.ID, "DELETED")
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestDeleteScopedToOwner(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)

	order, err := svc.Create(context.Background(), owner, CreateInput{ServiceTitle: "x", FullName: "y", Phone: "z"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), other, order.ID)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))

	require.NoError(t, svc.Delete(context.Background(), owner, order.ID))
}
