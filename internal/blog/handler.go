package blog

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

// Handler wires blog endpoints.
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

// MountRoutes registers blog routes. Posts are addressed by slug on
// reads and by id on writes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{slug}", h.retrieve)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuthenticated)
		r.Post("/", h.create)
		r.Patch("/{id:[0-9]+}", h.update)
		r.Delete("/{id:[0-9]+}", h.destroy)
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, post *Post) {
	p := authz.PrincipalFromContext(r.Context())
	spec := authz.SelectView(p, authz.KindBlogPost, authz.ActionRetrieve)
	httpx.JSON(w, status, spec.Project(post.Fields()))
}

type createRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"omitempty,max=200"`
	Content     string `json:"content" validate:"required"`
	CoverImage  string `json:"cover_image" validate:"omitempty,url"`
	Tags        string `json:"tags" validate:"omitempty,max=200"`
	IsPublished *bool  `json:"is_published"`
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
	post, err := h.service.Create(r.Context(), p, CreateInput{
		Title:       req.Title,
		Slug:        shared.Slugify(req.Slug),
		Content:     req.Content,
		CoverImage:  req.CoverImage,
		Tags:        req.Tags,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusCreated, post)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	page, perPage := shared.PageParams(r)
	posts, total, err := h.service.List(r.Context(), p, ListFilter{
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	spec := authz.SelectView(p, authz.KindBlogPost, authz.ActionList)
	out := make([]map[string]any, 0, len(posts))
	for i := range posts {
		out = append(out, spec.Project(posts[i].Fields()))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      out,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	post, err := h.service.Get(r.Context(), p, chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusOK, post)
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
	post, dropped, err := h.service.Update(r.Context(), p, id, payload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if len(dropped) > 0 {
		h.logger.Debug("masked blog fields", slog.Any("fields", dropped))
	}
	h.render(w, r, http.StatusOK, post)
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
