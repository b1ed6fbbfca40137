package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/hermes-renovation/hermes/internal/accounts"
	"github.com/hermes-renovation/hermes/internal/app"
	"github.com/hermes-renovation/hermes/internal/auth"
	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/blog"
	"github.com/hermes-renovation/hermes/internal/bookings"
	"github.com/hermes-renovation/hermes/internal/chats"
	"github.com/hermes-renovation/hermes/internal/invoices"
	"github.com/hermes-renovation/hermes/internal/loyalty"
	"github.com/hermes-renovation/hermes/internal/observability"
	"github.com/hermes-renovation/hermes/internal/orders"
	"github.com/hermes-renovation/hermes/internal/platform/db"
	"github.com/hermes-renovation/hermes/internal/portfolio"
	"github.com/hermes-renovation/hermes/internal/reviews"
	"github.com/hermes-renovation/hermes/internal/shared"
	"github.com/hermes-renovation/hermes/internal/sitesettings"
	"github.com/hermes-renovation/hermes/jobs"
	"github.com/hermes-renovation/hermes/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "hermes_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, accountsService)

	authzMiddleware := authz.Middleware{Resolver: authz.NewResolver(authRepo, logger)}

	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	accountsHandler := accounts.NewHandler(logger, accountsService, authzMiddleware)

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo, jobsClient, auditLogger, logger)
	ordersHandler := orders.NewHandler(logger, ordersService, authzMiddleware)

	bookingsRepo := bookings.NewRepository(dbpool)
	bookingsService := bookings.NewService(bookingsRepo)
	bookingsHandler := bookings.NewHandler(logger, bookingsService, authzMiddleware)

	reportClient := report.NewClient(cfg.GotenbergURL)
	invoiceRenderer := report.NewInvoiceRenderer(reportClient)

	invoicesRepo := invoices.NewRepository(dbpool)
	invoicesService := invoices.NewService(invoicesRepo, invoiceRenderer)
	invoicesHandler := invoices.NewHandler(logger, invoicesService, authzMiddleware)

	portfolioRepo := portfolio.NewRepository(dbpool)
	portfolioService := portfolio.NewService(portfolioRepo)
	portfolioHandler := portfolio.NewHandler(logger, portfolioService, authzMiddleware)

	blogRepo := blog.NewRepository(dbpool)
	blogService := blog.NewService(blogRepo)
	blogHandler := blog.NewHandler(logger, blogService, authzMiddleware)

	reviewsRepo := reviews.NewRepository(dbpool)
	reviewsService := reviews.NewService(reviewsRepo)
	reviewsHandler := reviews.NewHandler(logger, reviewsService, authzMiddleware)

	chatsRepo := chats.NewRepository(dbpool)
	chatsService := chats.NewService(chatsRepo)
	chatsHandler := chats.NewHandler(logger, chatsService, authzMiddleware)

	loyaltyRepo := loyalty.NewRepository(dbpool)
	loyaltyService := loyalty.NewService(loyaltyRepo)
	loyaltyHandler := loyalty.NewHandler(logger, loyaltyService, authzMiddleware)

	settingsRepo := sitesettings.NewRepository(dbpool)
	settingsService := sitesettings.NewService(settingsRepo)
	settingsHandler := sitesettings.NewHandler(logger, settingsService, authzMiddleware)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Authz:          authzMiddleware,

		AuthHandler:      authHandler,
		AccountsHandler:  accountsHandler,
		OrdersHandler:    ordersHandler,
		BookingsHandler:  bookingsHandler,
		InvoicesHandler:  invoicesHandler,
		PortfolioHandler: portfolioHandler,
		BlogHandler:      blogHandler,
		ReviewsHandler:   reviewsHandler,
		ChatsHandler:     chatsHandler,
		LoyaltyHandler:   loyaltyHandler,
		SettingsHandler:  settingsHandler,
		JobHandler:       jobHandler,

		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
