package orders

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Handler wires service order endpoints.
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

// MountRoutes registers order routes. Create is open to guests; the
// rest resolve ownership inside the service.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.retrieve)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.destroy)
	r.Patch("/{id}/status", h.updateStatus)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, order *ServiceOrder) {
	p := authz.PrincipalFromContext(r.Context())
	spec := authz.SelectView(p, authz.KindServiceOrder, authz.ActionRetrieve)
	httpx.JSON(w, status, spec.Project(order.Fields()))
}

type createRequest struct {
	ServiceTitle string `json:"service_title" validate:"required,max=200"`
	FullName     string `json:"full_name" validate:"required,max=150"`
	Phone        string `json:"phone" validate:"required,max=15"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
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
	p := authz.PrincipalFromContext(r.Context())
	order, err := h.service.Create(r.Context(), p, CreateInput{
		ServiceTitle: req.ServiceTitle,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Description:  req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusCreated, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	page, perPage := shared.PageParams(r)
	items, total, err := h.service.List(r.Context(), p, ListFilter{
		Status:  r.URL.Query().Get("status"),
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	spec := authz.SelectView(p, authz.KindServiceOrder, authz.ActionList)
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
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	order, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusOK, order)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
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
	order, dropped, err := h.service.Update(r.Context(), p, id, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if len(dropped) > 0 {
		h.logger.Debug("masked order fields", slog.Any("fields", dropped))
	}
	h.render(w, r, http.StatusOK, order)
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
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

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	order, err := h.service.UpdateStatus(r.Context(), p, id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusOK, order)
}
