package bookings

import (
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

// Handler wires booking endpoints.
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

// MountRoutes registers booking routes; all require authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authz.RequireAuthenticated)
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.retrieve)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.destroy)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, b *Booking) {
	p := authz.PrincipalFromContext(r.Context())
	spec := authz.SelectView(p, authz.KindBooking, authz.ActionRetrieve)
	httpx.JSON(w, status, spec.Project(b.Fields()))
}

type createRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot    string `json:"time_slot" validate:"required,max=20"`
	Address     string `json:"address" validate:"required,max=2000"`
	Description string `json:"description" validate:"omitempty,max=5000"`
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
	date, _ := time.Parse("2006-01-02", req.Date)
	p := authz.PrincipalFromContext(r.Context())
	booking, err := h.service.Create(r.Context(), p, CreateInput{
		Date:        date,
		TimeSlot:    req.TimeSlot,
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusCreated, booking)
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
	spec := authz.SelectView(p, authz.KindBooking, authz.ActionList)
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
	booking, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusOK, booking)
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
	booking, dropped, err := h.service.Update(r.Context(), p, id, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if len(dropped) > 0 {
		h.logger.Debug("masked booking fields", slog.Any("fields", dropped))
	}
	h.render(w, r, http.StatusOK, booking)
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
