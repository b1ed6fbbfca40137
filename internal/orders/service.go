package orders

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Notifier enqueues customer notifications for order lifecycle events.
type Notifier interface {
	NotifyOrderStatus(ctx context.Context, email string, orderID int64, status string) error
}

// Service wraps service order business rules.
type Service struct {
	repo     Repository
	notifier Notifier
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, notifier Notifier, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, audit: audit, logger: logger}
}

// CreateInput carries an order creation request.
type CreateInput struct {
	ServiceTitle string
	FullName     string
	Phone        string
	Description  string
}

// Create registers a new order. Anonymous callers may create; the owner
// is force-set from the principal, never from the payload.
func (s *Service) Create(ctx context.Context, p authz.Principal, in CreateInput) (*ServiceOrder, error) {
	if d := authz.Authorize(p, authz.KindServiceOrder, authz.ActionCreate, nil); !d.Allowed() {
		return nil, d.Err()
	}
	return s.repo.Create(ctx, &ServiceOrder{
		UserID:       p.UserID,
		ServiceTitle: in.ServiceTitle,
		FullName:     in.FullName,
		Phone:        in.Phone,
		Description:  in.Description,
	})
}

// Get retrieves one order, hiding rows the caller does not own.
func (s *Service) Get(ctx context.Context, p authz.Principal, id int64) (*ServiceOrder, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if d := authz.Authorize(p, authz.KindServiceOrder, authz.ActionRetrieve, &authz.ResourceRef{OwnerID: order.UserID}); !d.Allowed() {
		return nil, d.Err()
	}
	return order, nil
}

// List returns the caller's orders; staff see everything, anonymous
// callers get an empty page.
func (s *Service) List(ctx context.Context, p authz.Principal, filter ListFilter) ([]ServiceOrder, int, error) {
	d := authz.Authorize(p, authz.KindServiceOrder, authz.ActionList, nil)
	if d == authz.DecisionEmpty {
		return []ServiceOrder{}, 0, nil
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

// Update applies a masked payload to an order. Fields outside the
// caller's view spec are dropped before the write; the dropped keys are
// returned so the boundary can expose them.
func (s *Service) Update(ctx context.Context, p authz.Principal, id int64, payload map[string]any) (*ServiceOrder, []string, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, httpx.ErrNotFound
		}
		return nil, nil, err
	}
	if d := authz.Authorize(p, authz.KindServiceOrder, authz.ActionPartialUpdate, &authz.ResourceRef{OwnerID: order.UserID}); !d.Allowed() {
		return nil, nil, d.Err()
	}

	spec := authz.SelectView(p, authz.KindServiceOrder, authz.ActionPartialUpdate)
	dropped := spec.Mask(payload)

	if v, ok := payload["service_title"].(string); ok {
		order.ServiceTitle = v
	}
	if v, ok := payload["full_name"].(string); ok {
		order.FullName = v
	}
	if v, ok := payload["phone"].(string); ok {
		order.Phone = v
	}
	if v, ok := payload["description"].(string); ok {
		order.Description = v
	}
	if v, ok := payload["admin_notes"].(string); ok {
		order.AdminNotes = v
	}
	if v, ok := payload["estimated_cost"].(string); ok {
		order.EstimatedCost = v
	}
	if v, ok := payload["status"].(string); ok {
		if err := authz.ValidateStatus(authz.KindServiceOrder, v); err != nil {
			return nil, dropped, err
		}
		order.Status = v
	}

	updated, err := s.repo.Update(ctx, order)
	if err != nil {
		return nil, dropped, err
	}
	return updated, dropped, nil
}

// UpdateStatus is the staff-only status transition action.
func (s *Service) UpdateStatus(ctx context.Context, p authz.Principal, id int64, status string) (*ServiceOrder, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if d := authz.Authorize(p, authz.KindServiceOrder, authz.ActionUpdateStatus, &authz.ResourceRef{OwnerID: order.UserID}); !d.Allowed() {
		return nil, d.Err()
	}
	if err := authz.ValidateStatus(authz.KindServiceOrder, status); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  p.UserID,
			Action:   "order.status",
			Entity:   "service_order",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"from": order.Status, "to": status},
		})
	}
	s.notifyStatus(ctx, updated)
	return updated, nil
}

func (s *Service) notifyStatus(ctx context.Context, order *ServiceOrder) {
	if s.notifier == nil {
		return
	}
	email, err := s.repo.OwnerEmail(ctx, order.ID)
	if err != nil || email == "" {
		return
	}
	if err := s.notifier.NotifyOrderStatus(ctx, email, order.ID, order.Status); err != nil && s.logger != nil {
		s.logger.Warn("enqueue order status notification", slog.Any("error", err))
	}
}

// Delete removes an order; owners may delete their own, staff any.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id int64) error {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	if d := authz.Authorize(p, authz.KindServiceOrder, authz.ActionDestroy, &authz.ResourceRef{OwnerID: order.UserID}); !d.Allowed() {
		return d.Err()
	}
	return s.repo.Delete(ctx, id)
}
