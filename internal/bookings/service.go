package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Service wraps booking business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries a booking request.
type CreateInput struct {
	Date        time.Time
	TimeSlot    string
	Address     string
	Description string
}

// Create books a visit slot for the caller. The owner is the principal.
func (s *Service) Create(ctx context.Context, p authz.Principal, in CreateInput) (*Booking, error) {
	if d := authz.Authorize(p, authz.KindBooking, authz.ActionCreate, nil); !d.Allowed() {
		return nil, d.Err()
	}
	return s.repo.Create(ctx, &Booking{
		UserID:      p.UserID,
		Date:        in.Date,
		TimeSlot:    in.TimeSlot,
		Address:     in.Address,
		Description: in.Description,
	})
}

// Get retrieves one booking, hiding rows the caller does not own.
func (s *Service) Get(ctx context.Context, p authz.Principal, id int64) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if d := authz.Authorize(p, authz.KindBooking, authz.ActionRetrieve, &authz.ResourceRef{OwnerID: booking.UserID}); !d.Allowed() {
		return nil, d.Err()
	}
	return booking, nil
}

// List returns the caller's bookings; staff see all.
func (s *Service) List(ctx context.Context, p authz.Principal, filter ListFilter) ([]Booking, int, error) {
	d := authz.Authorize(p, authz.KindBooking, authz.ActionList, nil)
	if d == authz.DecisionEmpty {
		return []Booking{}, 0, nil
	}
	if !d.Allowed() {
		return nil, 0, d.Err()
	}
	ownerID := p.UserID
	if p.IsStaff {
		ownerID = 0
	}
	return s.repo.List(ctx, ownerID, filter)
}

// Update applies a masked payload to a booking.
func (s *Service) Update(ctx context.Context, p authz.Principal, id int64, payload map[string]any) (*Booking, []string, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, httpx.ErrNotFound
		}
		return nil, nil, err
	}
	if d := authz.Authorize(p, authz.KindBooking, authz.ActionPartialUpdate, &authz.ResourceRef{OwnerID: booking.UserID}); !d.Allowed() {
		return nil, nil, d.Err()
	}

	spec := authz.SelectView(p, authz.KindBooking, authz.ActionPartialUpdate)
	dropped := spec.Mask(payload)

	if v, ok := payload["date"].(string); ok {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, dropped, httpx.ErrValidation
		}
		booking.Date = date
	}
	if v, ok := payload["time_slot"].(string); ok {
		booking.TimeSlot = v
	}
	if v, ok := payload["address"].(string); ok {
		booking.Address = v
	}
	if v, ok := payload["description"].(string); ok {
		booking.Description = v
	}
	if v, ok := payload["admin_notes"].(string); ok {
		booking.AdminNotes = v
	}
	if v, ok := payload["status"].(string); ok {
		if err := authz.ValidateStatus(authz.KindBooking, v); err != nil {
			return nil, dropped, err
		}
		booking.Status = v
	}

	updated, err := s.repo.Update(ctx, booking)
	if err != nil {
		return nil, dropped, err
	}
	return updated, dropped, nil
}

// Delete cancels a booking outright; owners their own, staff any.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id int64) error {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	if d := authz.Authorize(p, authz.KindBooking, authz.ActionDestroy, &authz.ResourceRef{OwnerID: booking.UserID}); !d.Allowed() {
		return d.Err()
	}
	return s.repo.Delete(ctx, id)
}
