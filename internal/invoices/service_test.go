package invoices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
	"github.com/hermes-renovation/hermes/report"
)

type mockRepository struct {
	invoices map[int64]*Invoice
	numbers  map[string]bool
	owners   map[int64]int64 // order id -> owner
	nextID   int64
}

func newMockRepository(owners map[int64]int64) *mockRepository {
	return &mockRepository{
		invoices: make(map[int64]*Invoice),
		numbers:  make(map[string]bool),
		owners:   owners,
		nextID:   1,
	}
}

func (m *mockRepository) Create(ctx context.Context, inv *Invoice) (*Invoice, error) {
	if m.numbers[inv.InvoiceNumber] {
		return nil, httpx.ErrDuplicate
	}
	m.numbers[inv.InvoiceNumber] = true
	created := *inv
	created.ID = m.nextID
	created.Status = authz.InvoicePending
	created.OrderOwnerID = m.owners[inv.OrderID]
	m.nextID++
	m.invoices[created.ID] = &created
	out := created
	return &out, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *inv
	return &out, nil
}

func (m *mockRepository) List(ctx context.Context, ownerID int64, filter ListFilter) ([]Invoice, int, error) {
	var items []Invoice
	for _, inv := range m.invoices {
		if ownerID != 0 && inv.OrderOwnerID != ownerID {
			continue
		}
		items = append(items, *inv)
	}
	return items, len(items), nil
}

func (m *mockRepository) Update(ctx context.Context, inv *Invoice) (*Invoice, error) {
	if _, ok := m.invoices[inv.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	updated := *inv
	m.invoices[inv.ID] = &updated
	out := updated
	return &out, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.invoices[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.invoices, id)
	return nil
}

type mockRenderer struct {
	calls int
}

func (m *mockRenderer) Render(ctx context.Context, doc report.InvoiceDocument) ([]byte, error) {
	m.calls++
	return []byte("%PDF-1.4 " + doc.InvoiceNumber), nil
}

var (
	ownerP = authz.Principal{UserID: 7, Role: authz.RoleHomeowner}
	otherP = authz.Principal{UserID: 8, Role: authz.RoleHomeowner}
	staffP = authz.Principal{UserID: 1, Role: authz.RoleAdmin, IsStaff: true}
)

func newTestService() (*Service, *mockRenderer) {
	renderer := &mockRenderer{}
	repo := newMockRepository(map[int64]int64{100: ownerP.UserID})
	return NewService(repo, renderer), renderer
}

func issue(t *testing.T, svc *Service) *Invoice {
	t.Helper()
	inv, err := svc.Create(context.Background(), staffP, CreateInput{
		OrderID:     100,
		Amount:      "1500.00",
		TaxAmount:   "135.00",
		FinalAmount: "1635.00",
		DueDate:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return inv
}

func TestOnlyStaffIssueInvoices(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), ownerP, CreateInput{OrderID: 100})
	assert.True(t, errors.Is(err, httpx.ErrForbidden))
}

func TestTransitiveOwnershipOnRead(t *testing.T) {
	svc, _ := newTestService()
	inv := issue(t, svc)

	got, err := svc.Get(context.Background(), ownerP, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)

	_, err = svc.Get(context.Background(), otherP, inv.ID)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestOwnerCannotEditInvoice(t *testing.T) {
	svc, _ := newTestService()
	inv := issue(t, svc)

	_, _, err := svc.Update(context.Background(), ownerP, inv.ID, map[string]any{"status": "PAID"})
	assert.True(t, errors.Is(err, httpx.ErrForbidden))
}

func TestMarkingPaidStampsPaidDate(t *testing.T) {
	svc, _ := newTestService()
	inv := issue(t, svc)

	updated, _, err := svc.Update(context.Background(), staffP, inv.ID, map[string]any{"status": "PAID"})
	require.NoError(t, err)
	assert.Equal(t, authz.InvoicePaid, updated.Status)
	require.NotNil(t, updated.PaidDate)

	_, _, err = svc.Update(context.Background(), staffP, inv.ID, map[string]any{"status": "SHREDDED"})
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestOwnerRendersOwnPDF(t *testing.T) {
	svc, renderer := newTestService()
	inv := issue(t, svc)

	_, pdf, err := svc.GeneratePDF(context.Background(), ownerP, inv.ID)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), inv.InvoiceNumber)
	assert.Equal(t, 1, renderer.calls)

	_, _, err = svc.GeneratePDF(context.Background(), otherP, inv.ID)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
	assert.Equal(t, 1, renderer.calls)
}

func TestInvoiceNumbersAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n := NewInvoiceNumber()
		assert.False(t, seen[n])
		seen[n] = true
	}
}
