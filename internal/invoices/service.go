package invoices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
	"github.com/hermes-renovation/hermes/report"
)

// PDFRenderer produces a printable document for an invoice.
type PDFRenderer interface {
	Render(ctx context.Context, doc report.InvoiceDocument) ([]byte, error)
}

// Service wraps invoice business rules. Writes are staff-only; owners of
// the billed order may read and render their own invoices.
type Service struct {
	repo     Repository
	renderer PDFRenderer
}

// NewService constructs a new Service.
func NewService(repo Repository, renderer PDFRenderer) *Service {
	return &Service{repo: repo, renderer: renderer}
}

// NewInvoiceNumber mints a unique human-readable invoice number.
func NewInvoiceNumber() string {
	return "INV-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateInput carries a staff invoice creation request.
type CreateInput struct {
	OrderID        int64
	Amount         string
	TaxAmount      string
	DiscountAmount string
	FinalAmount    string
	DueDate        time.Time
}

// Create issues an invoice against an order. Staff only.
func (s *Service) Create(ctx context.Context, p authz.Principal, in CreateInput) (*Invoice, error) {
	if d := authz.Authorize(p, authz.KindInvoice, authz.ActionCreate, nil); !d.Allowed() {
		return nil, d.Err()
	}
	return s.repo.Create(ctx, &Invoice{
		OrderID:        in.OrderID,
		InvoiceNumber:  NewInvoiceNumber(),
		Amount:         in.Amount,
		TaxAmount:      in.TaxAmount,
		DiscountAmount: in.DiscountAmount,
		FinalAmount:    in.FinalAmount,
		DueDate:        in.DueDate,
	})
}

// Get retrieves one invoice; owners of the billed order or staff.
func (s *Service) Get(ctx context.Context, p authz.Principal, id int64) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if d := authz.Authorize(p, authz.KindInvoice, authz.ActionRetrieve, &authz.ResourceRef{OwnerID: inv.OrderOwnerID}); !d.Allowed() {
		return nil, d.Err()
	}
	return inv, nil
}

// List returns the caller's invoices; staff see all.
func (s *Service) List(ctx context.Context, p authz.Principal, filter ListFilter) ([]Invoice, int, error) {
	d := authz.Authorize(p, authz.KindInvoice, authz.ActionList, nil)
	if d == authz.DecisionEmpty {
		return []Invoice{}, 0, nil
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

// Update applies a masked payload; every invoice field is staff-only.
func (s *Service) Update(ctx context.Context, p authz.Principal, id int64, payload map[string]any) (*Invoice, []string, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, httpx.ErrNotFound
		}
		return nil, nil, err
	}
	if d := authz.Authorize(p, authz.KindInvoice, authz.ActionPartialUpdate, &authz.ResourceRef{OwnerID: inv.OrderOwnerID}); !d.Allowed() {
		return nil, nil, d.Err()
	}

	spec := authz.SelectView(p, authz.KindInvoice, authz.ActionPartialUpdate)
	dropped := spec.Mask(payload)

	if v, ok := payload["amount"].(string); ok {
		inv.Amount = v
	}
	if v, ok := payload["tax_amount"].(string); ok {
		inv.TaxAmount = v
	}
	if v, ok := payload["discount_amount"].(string); ok {
		inv.DiscountAmount = v
	}
	if v, ok := payload["final_amount"].(string); ok {
		inv.FinalAmount = v
	}
	if v, ok := payload["due_date"].(string); ok {
		due, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, dropped, httpx.ErrValidation
		}
		inv.DueDate = due
	}
	if v, ok := payload["status"].(string); ok {
		if err := authz.ValidateStatus(authz.KindInvoice, v); err != nil {
			return nil, dropped, err
		}
		inv.Status = v
		if v == authz.InvoicePaid && inv.PaidDate == nil {
			now := time.Now()
			inv.PaidDate = &now
		}
	}

	updated, err := s.repo.Update(ctx, inv)
	if err != nil {
		return nil, dropped, err
	}
	return updated, dropped, nil
}

// Delete removes an invoice. Staff only.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id int64) error {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	if d := authz.Authorize(p, authz.KindInvoice, authz.ActionDestroy, &authz.ResourceRef{OwnerID: inv.OrderOwnerID}); !d.Allowed() {
		return d.Err()
	}
	return s.repo.Delete(ctx, id)
}

// GeneratePDF renders the invoice as a PDF for its owner or staff.
func (s *Service) GeneratePDF(ctx context.Context, p authz.Principal, id int64) (*Invoice, []byte, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, httpx.ErrNotFound
		}
		return nil, nil, err
	}
	if d := authz.Authorize(p, authz.KindInvoice, authz.ActionGeneratePDF, &authz.ResourceRef{OwnerID: inv.OrderOwnerID}); !d.Allowed() {
		return nil, nil, d.Err()
	}
	pdf, err := s.renderer.Render(ctx, report.InvoiceDocument{
		InvoiceNumber:  inv.InvoiceNumber,
		CustomerName:   inv.CustomerName,
		ServiceTitle:   inv.ServiceTitle,
		Amount:         inv.Amount,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		FinalAmount:    inv.FinalAmount,
		Status:         inv.Status,
		DueDate:        inv.DueDate,
		IssuedAt:       inv.CreatedAt,
	})
	if err != nil {
		return nil, nil, err
	}
	return inv, pdf, nil
}
