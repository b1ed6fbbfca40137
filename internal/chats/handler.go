package chats

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

// Handler wires chat endpoints.
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

// MountRoutes registers chat routes; all require authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authz.RequireAuthenticated)
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.retrieve)
	r.Patch("/{id}", h.rename)
	r.Delete("/{id}", h.destroy)
	r.Post("/{id}/messages", h.addMessage)
}

func (h *Handler) renderSession(w http.ResponseWriter, r *http.Request, status int, session *Session, messages []Message) {
	p := authz.PrincipalFromContext(r.Context())
	spec := authz.SelectView(p, authz.KindChatSession, authz.ActionRetrieve)
	out := spec.Project(session.Fields())
	if messages != nil {
		msgSpec := authz.SelectView(p, authz.KindChatMessage, authz.ActionRetrieve)
		rendered := make([]map[string]any, 0, len(messages))
		for i := range messages {
			rendered = append(rendered, msgSpec.Project(messages[i].Fields()))
		}
		out["messages"] = rendered
	}
	httpx.JSON(w, status, out)
}

type createRequest struct {
	Title string `json:"title" validate:"required,max=200"`
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
	session, err := h.service.CreateSession(r.Context(), p, req.Title)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.renderSession(w, r, http.StatusCreated, session, nil)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	page, perPage := shared.PageParams(r)
	sessions, total, err := h.service.ListSessions(r.Context(), p, page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	spec := authz.SelectView(p, authz.KindChatSession, authz.ActionList)
	out := make([]map[string]any, 0, len(sessions))
	for i := range sessions {
		out = append(out, spec.Project(sessions[i].Fields()))
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
	session, messages, err := h.service.GetSession(r.Context(), p, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if messages == nil {
		messages = []Message{}
	}
	h.renderSession(w, r, http.StatusOK, session, messages)
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
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
	session, err := h.service.RenameSession(r.Context(), p, id, req.Title)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.renderSession(w, r, http.StatusOK, session, nil)
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	if err := h.service.DeleteSession(r.Context(), p, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

type messageRequest struct {
	Role     string `json:"role" validate:"required,oneof=user model"`
	Text     string `json:"text" validate:"required"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

func (h *Handler) addMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var req messageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	msg, err := h.service.AddMessage(r.Context(), p, id, MessageInput{
		Role:     req.Role,
		Text:     req.Text,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	spec := authz.SelectView(p, authz.KindChatMessage, authz.ActionRetrieve)
	httpx.JSON(w, http.StatusCreated, spec.Project(msg.Fields()))
}
