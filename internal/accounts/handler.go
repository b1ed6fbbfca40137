package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Handler wires account endpoints.
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

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuthenticated)
		r.Get("/profile", h.getProfile)
		r.Patch("/profile", h.updateProfile)
		r.Get("/activities", h.listActivities)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireStaff)
		r.Get("/users", h.listUsers)
	})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	profile, err := h.service.Profile(r.Context(), p)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Bio                *string   `json:"bio" validate:"omitempty,max=2000"`
	Address            *string   `json:"address" validate:"omitempty,max=2000"`
	NationalCode       *string   `json:"national_code" validate:"omitempty,len=10"`
	CompanyName        *string   `json:"company_name" validate:"omitempty,max=200"`
	LicenseNumber      *string   `json:"license_number" validate:"omitempty,max=50"`
	Specialties        *[]string `json:"specialties"`
	EmailNotifications *bool     `json:"email_notifications"`
	SMSNotifications   *bool     `json:"sms_notifications"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	profile, err := h.service.UpdateProfile(r.Context(), p, ProfilePatch{
		Bio:                req.Bio,
		Address:            req.Address,
		NationalCode:       req.NationalCode,
		CompanyName:        req.CompanyName,
		LicenseNumber:      req.LicenseNumber,
		Specialties:        req.Specialties,
		EmailNotifications: req.EmailNotifications,
		SMSNotifications:   req.SMSNotifications,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	page, perPage := shared.PageParams(r)
	items, total, err := h.service.Activities(r.Context(), p, page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	page, perPage := shared.PageParams(r)
	users, total, err := h.service.ListUsers(r.Context(), p, ListUsersFilter{
		Role:    r.URL.Query().Get("role"),
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]any, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      out,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}
