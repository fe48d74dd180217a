package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/adapters/database/memory"
	"github.com/SscSPs/koperasi_backend/internal/adapters/database/pgsql"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_backend/internal/core/services"
	"github.com/SscSPs/koperasi_backend/internal/handlers"
	"github.com/SscSPs/koperasi_backend/internal/middleware"
	"github.com/SscSPs/koperasi_backend/internal/notification"
	"github.com/SscSPs/koperasi_backend/internal/platform/config"
	"github.com/SscSPs/koperasi_backend/internal/platform/metrics"
	"github.com/SscSPs/koperasi_backend/internal/utils"
	"github.com/SscSPs/koperasi_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

// @title Koperasi Backend API
// @version 1.0
// @description Approval workflows and member accounts for the cooperative.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uow, repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	m := metrics.New()
	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	dispatcher := notification.NewDispatcher(repos.UserRepo, newNotifier(context.WithoutCancel(ctx), cfg, logger), cfg.NotificationQueueSize,
		notification.WithWorkers(cfg.NotificationWorkers),
		notification.WithDispatcherMetrics(m),
		notification.WithLogger(logger),
	)
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Close()

	publisher := notification.MultiPublisher{dispatcher, notification.NewAnalyticsPublisher(posthogClient)}
	serviceContainer := services.NewServiceContainer(cfg, uow, repos, publisher, m)

	if err := handlers.RegisterValidators(); err != nil {
		logger.Error("Failed to register validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	apiLimiter, err := middleware.NewMemoryLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Failed to create rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		m.Middleware(),
		middleware.PosthogMiddleware(posthogClient),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r.GET("/metrics", m.Handler())
	handlers.RegisterRoutes(r, cfg, serviceContainer, apiLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// openStore wires the configured persistence driver. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.UnitOfWork, portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return store, store.Repos(), func() {}, nil
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	changed, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, database.MigrateUp, logger)
	if err != nil {
		database.ClosePgxPool(pool)
		return nil, portsrepo.RepositoryProvider{}, nil, err
	}
	if changed {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}

	return pgsql.NewUnitOfWork(pool), pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
}

// newNotifier uses Gmail when credentials are configured and falls back to logging messages.
func newNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) notification.Notifier {
	if cfg.GmailClientID == "" || cfg.GmailRefreshToken == "" || cfg.MailSender == "" {
		return notification.NewLogNotifier(logger)
	}
	gmailNotifier, err := notification.NewGmailNotifier(ctx, cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, cfg.MailSender)
	if err != nil {
		logger.Error("Failed to initialize Gmail notifier, falling back to log", slog.String("error", err.Error()))
		return notification.NewLogNotifier(logger)
	}
	logger.Info("Gmail notifier initialized", slog.String("sender", cfg.MailSender))
	return gmailNotifier
}
