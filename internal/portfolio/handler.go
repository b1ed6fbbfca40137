package portfolio

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

// Handler wires portfolio endpoints.
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

// MountRoutes registers portfolio routes. Reads are public; writes need
// an authenticated caller.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/featured", h.featured)
	r.Get("/{id}", h.retrieve)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuthenticated)
		r.Post("/", h.create)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.destroy)
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, item *Item) {
	p := authz.PrincipalFromContext(r.Context())
	spec := authz.SelectView(p, authz.KindPortfolio, authz.ActionRetrieve)
	httpx.JSON(w, status, spec.Project(item.Fields()))
}

type galleryEntry struct {
	ImageURL string `json:"image_url" validate:"required,url"`
	Caption  string `json:"caption" validate:"omitempty,max=200"`
	Order    int    `json:"order" validate:"gte=0"`
}

type createRequest struct {
	Title          string         `json:"title" validate:"required,max=200"`
	Description    string         `json:"description" validate:"required"`
	CoverImage     string         `json:"cover_image" validate:"omitempty,url"`
	Location       string         `json:"location" validate:"omitempty,max=200"`
	CompletionDate string         `json:"completion_date" validate:"omitempty,datetime=2006-01-02"`
	BeforeVideoURL string         `json:"before_video_url" validate:"omitempty,url"`
	AfterVideoURL  string         `json:"after_video_url" validate:"omitempty,url"`
	IsFeatured     bool           `json:"is_featured"`
	Gallery        []galleryEntry `json:"gallery_images" validate:"omitempty,dive"`
	Tags           []string       `json:"tags" validate:"omitempty,dive,max=50"`
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
	in := CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		CoverImage:     req.CoverImage,
		Location:       req.Location,
		BeforeVideoURL: req.BeforeVideoURL,
		AfterVideoURL:  req.AfterVideoURL,
		IsFeatured:     req.IsFeatured,
		Tags:           req.Tags,
	}
	if req.CompletionDate != "" {
		date, _ := time.Parse("2006-01-02", req.CompletionDate)
		in.CompletionDate = &date
	}
	for _, g := range req.Gallery {
		in.Gallery = append(in.Gallery, Image{ImageURL: g.ImageURL, Caption: g.Caption, Order: g.Order})
	}
	p := authz.PrincipalFromContext(r.Context())
	item, err := h.service.Create(r.Context(), p, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusCreated, item)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	page, perPage := shared.PageParams(r)
	filter := ListFilter{
		Location: r.URL.Query().Get("location"),
		Search:   r.URL.Query().Get("search"),
		Page:     page,
		PerPage:  perPage,
	}
	if v := r.URL.Query().Get("is_featured"); v != "" {
		featured := v == "true" || v == "1"
		filter.Featured = &featured
	}
	items, total, err := h.service.List(r.Context(), p, filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	spec := authz.SelectView(p, authz.KindPortfolio, authz.ActionList)
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, spec.Project(items[i].Fields()))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      out,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) featured(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	items, err := h.service.Featured(r.Context(), p)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	spec := authz.SelectView(p, authz.KindPortfolio, authz.ActionFeatured)
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, spec.Project(items[i].Fields()))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	p := authz.PrincipalFromContext(r.Context())
	item, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, http.StatusOK, item)
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
	in := UpdateInput{Payload: payload}
	if raw, ok := payload["gallery_images"].([]any); ok {
		for _, entry := range raw {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			img := Image{}
			img.ImageURL, _ = m["image_url"].(string)
			img.Caption, _ = m["caption"].(string)
			if o, ok := m["order"].(float64); ok {
				img.Order = int(o)
			}
			in.Gallery = append(in.Gallery, img)
		}
		delete(payload, "gallery_images")
	}
	if raw, ok := payload["tags"].([]any); ok {
		for _, entry := range raw {
			if name, ok := entry.(string); ok {
				in.Tags = append(in.Tags, name)
			}
		}
		delete(payload, "tags")
	}
	p := authz.PrincipalFromContext(r.Context())
	item, dropped, err := h.service.Update(r.Context(), p, id, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if len(dropped) > 0 {
		h.logger.Debug("masked portfolio fields", slog.Any("fields", dropped))
	}
	h.render(w, r, http.StatusOK, item)
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
