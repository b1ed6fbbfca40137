package bookings

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
)

type mockRepository struct {
	bookings map[int64]*Booking
	slots    map[string]bool
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		bookings: make(map[int64]*Booking),
		slots:    make(map[string]bool),
		nextID:   1,
	}
}

func slotKey(date time.Time, slot string) string {
	return date.Format("2006-01-02") + "|" + slot
}

func (m *mockRepository) Create(ctx context.Context, b *Booking) (*Booking, error) {
	key := slotKey(b.Date, b.TimeSlot)
	if m.slots[key] {
		return nil, httpx.ErrDuplicate
	}
	m.slots[key] = true
	created := *b
	created.ID = m.nextID
	created.Status = authz.BookingPending
	m.nextID++
	m.bookings[created.ID] = &created
	out := created
	return &out, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *mockRepository) List(ctx context.Context, ownerID int64, filter ListFilter) ([]Booking, int, error) {
	var items []Booking
	for _, b := range m.bookings {
		if ownerID != 0 && b.UserID != ownerID {
			continue
		}
		items = append(items, *b)
	}
	return items, len(items), nil
}

func (m *mockRepository) Update(ctx context.Context, b *Booking) (*Booking, error) {
	if _, ok := m.bookings[b.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	updated := *b
	m.bookings[b.ID] = &updated
	out := updated
	return &out, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	b, ok := m.bookings[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(m.slots, slotKey(b.Date, b.TimeSlot))
	delete(m.bookings, id)
	return nil
}

var (
	ownerP = authz.Principal{UserID: 7, Role: authz.RoleHomeowner}
	otherP = authz.Principal{UserID: 8, Role: authz.RoleHomeowner}
	staffP = authz.Principal{UserID: 1, Role: authz.RoleAdmin, IsStaff: true}
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestAnonymousCannotBook(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Create(context.Background(), authz.Anonymous(), CreateInput{})
	assert.True(t, errors.Is(err, httpx.ErrUnauthorized))
}

func TestDoubleBookingConflicts(t *testing.T) {
	svc := NewService(newMockRepository())
	in := CreateInput{Date: mustDate(t, "2026-09-15"), TimeSlot: "10:00 - 12:00", Address: "Tehran"}

	_, err := svc.Create(context.Background(), ownerP, in)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), otherP, in)
	assert.True(t, errors.Is(err, httpx.ErrDuplicate))
}

func TestOwnerScoping(t *testing.T) {
	svc := NewService(newMockRepository())
	booking, err := svc.Create(context.Background(), ownerP, CreateInput{Date: mustDate(t, "2026-09-15"), TimeSlot: "10:00 - 12:00", Address: "Tehran"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), otherP, booking.ID)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))

	got, err := svc.Get(context.Background(), staffP, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
}

func TestOwnerCannotTouchStatusOrAdminNotes(t *testing.T) {
	svc := NewService(newMockRepository())
	booking, err := svc.Create(context.Background(), ownerP, CreateInput{Date: mustDate(t, "2026-09-15"), TimeSlot: "10:00 - 12:00", Address: "Tehran"})
	require.NoError(t, err)

	updated, dropped, err := svc.Update(context.Background(), ownerP, booking.ID, map[string]any{
		"address":     "Karaj",
		"status":      "CONFIRMED",
		"admin_notes": "vip",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"status", "admin_notes"}, dropped)
	assert.Equal(t, "Karaj", updated.Address)
	assert.Equal(t, authz.BookingPending, updated.Status)
}

func TestStaffConfirmsBooking(t *testing.T) {
	svc := NewService(newMockRepository())
	booking, err := svc.Create(context.Background(), ownerP, CreateInput{Date: mustDate(t, "2026-09-15"), TimeSlot: "10:00 - 12:00", Address: "Tehran"})
	require.NoError(t, err)

	updated, _, err := svc.Update(context.Background(), staffP, booking.ID, map[string]any{"status": "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, authz.BookingConfirmed, updated.Status)

	_, _, err = svc.Update(context.Background(), staffP, booking.ID, map[string]any{"status": "CONTACTED"})
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}
