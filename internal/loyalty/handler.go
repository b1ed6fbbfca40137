package loyalty

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
)

// Handler wires the loyalty endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: mw}
}

// MountRoutes registers the read-only loyalty route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authz.RequireAuthenticated)
	r.Get("/", h.account)
}

func (h *Handler) account(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	account, err := h.service.Account(r.Context(), p)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	spec := authz.SelectView(p, authz.KindLoyalty, authz.ActionRetrieve)
	httpx.JSON(w, http.StatusOK, spec.Project(account.Fields()))
}
