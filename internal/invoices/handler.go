package invoices

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Handler wires invoice endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: mw, validator: validator.New()}
}

// MountRoutes registers invoice routes; all require authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authz.RequireAuthenticated)
	r.Get("/", h.list)
	r.Get("/{id}", h.retrieve)
	r.Get("/{id}/pdf", h.pdf)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireStaff)
		r.Post("/", h.create)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.destroy)
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, inv *Invoice) {
	p := authz.PrincipalFromContext(r.Context())
	spec := authz.SelectView(p, authz.KindInvoice, authz.ActionRetrieve)
	httpx.JSON(w, status, spec.Project(inv.Fields()))
}

type createRequest struct {
	OrderID        int64  `json:"order_id" validate:"required,gt=0"`
	Amount         string `json:"amount" validate:"required"`
	TaxAmount      string `json:"tax_amount" validate:"omitempty"`
	DiscountAmount string `json:"discount_amount" validate:"omitempty"`
	FinalAmount    string `json:"final_amount" validate:"required"`
	DueDate        string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if req.TaxAmount == "" {
		req.TaxAmount = "0"
	}
	if req.DiscountAmount == "" {
		req.DiscountAmount = "0"
	}
	due, _ := time.Parse("2006-01-02", req.DueDate)
	p := authz.PrincipalFromContext(r.Context())
	inv, err := h.service.Create(r.Context(), p, CreateInput{
		OrderID:        req.OrderID,
		Amount:         req.Amount,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		FinalAmount:    req.FinalAmount,
		DueDate:        due,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusCreated, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	page, perPage := shared.PageParams(r)
	items, total, err := h.service.List(r.Context(), p, ListFilter{
		Status:  r.URL.Query().Get("status"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	spec := authz.SelectView(p, authz.KindInvoice, authz.ActionList)
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, spec.Project(items[i].Fields()))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      out,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	inv, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusOK, inv)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var payload map[string]any
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	inv, dropped, err := h.service.Update(r.Context(), p, id, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if len(dropped) > 0 {
		h.logger.Debug("masked invoice fields", slog.Any("fields", dropped))
	}
	h.render(w, r, http.StatusOK, inv)
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), p, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	inv, pdf, err := h.service.GeneratePDF(r.Context(), p, id)
	if err != nil {
		h.logger.Error("invoice pdf render failed", slog.Int64("invoice_id", id), slog.Any("err", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s.pdf", inv.InvoiceNumber))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
