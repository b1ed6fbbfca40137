package sitesettings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
)

// Handler wires the settings endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: mw}
}

// MountRoutes registers the settings routes. GET is public, PATCH is
// staff only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuthenticated, h.authz.RequireStaff)
		r.Patch("/", h.update)
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, settings *Settings) {
	p := authz.PrincipalFromContext(r.Context())
	spec := authz.SelectView(p, authz.KindSiteSettings, authz.ActionRetrieve)
	httpx.JSON(w, http.StatusOK, spec.Project(settings.Fields()))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	settings, err := h.service.Get(r.Context(), p)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, settings)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	settings, dropped, err := h.service.Update(r.Context(), p, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if len(dropped) > 0 {
		h.logger.Debug("masked settings fields", slog.Any("fields", dropped))
	}
	h.render(w, r, settings)
}
