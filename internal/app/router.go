package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hermes-renovation/hermes/internal/accounts"
	"github.com/hermes-renovation/hermes/internal/auth"
	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/blog"
	"github.com/hermes-renovation/hermes/internal/bookings"
	"github.com/hermes-renovation/hermes/internal/chats"
	"github.com/hermes-renovation/hermes/internal/invoices"
	"github.com/hermes-renovation/hermes/internal/loyalty"
	"github.com/hermes-renovation/hermes/internal/observability"
	"github.com/hermes-renovation/hermes/internal/orders"
	"github.com/hermes-renovation/hermes/internal/portfolio"
	"github.com/hermes-renovation/hermes/internal/reviews"
	"github.com/hermes-renovation/hermes/internal/shared"
	"github.com/hermes-renovation/hermes/internal/sitesettings"
	"github.com/hermes-renovation/hermes/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Authz          authz.Middleware

	AuthHandler      *auth.Handler
	AccountsHandler  *accounts.Handler
	OrdersHandler    *orders.Handler
	BookingsHandler  *bookings.Handler
	InvoicesHandler  *invoices.Handler
	PortfolioHandler *portfolio.Handler
	BlogHandler      *blog.Handler
	ReviewsHandler   *reviews.Handler
	ChatsHandler     *chats.Handler
	LoyaltyHandler   *loyalty.Handler
	SettingsHandler  *sitesettings.Handler
	JobHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the public API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.Authz.WithPrincipal)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/accounts", params.AccountsHandler.MountRoutes)
	r.Route("/orders", params.OrdersHandler.MountRoutes)
	r.Route("/bookings", params.BookingsHandler.MountRoutes)
	r.Route("/invoices", params.InvoicesHandler.MountRoutes)
	r.Route("/portfolio", params.PortfolioHandler.MountRoutes)
	r.Route("/blog", params.BlogHandler.MountRoutes)
	r.Route("/reviews", params.ReviewsHandler.MountRoutes)
	r.Route("/chats", params.ChatsHandler.MountRoutes)
	r.Route("/loyalty", params.LoyaltyHandler.MountRoutes)
	r.Route("/settings", params.SettingsHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
