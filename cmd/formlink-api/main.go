// Package main is the entry point for the formlink-api server.
// Note: LINE login happens client-side in the app shell; the server only
// sees access tokens and the user IDs resolved from them.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/asagaorino0/formlink-api/internal/config"
	"github.com/asagaorino0/formlink-api/internal/constants"
	"github.com/asagaorino0/formlink-api/internal/database"
	"github.com/asagaorino0/formlink-api/internal/http/handlers"
	"github.com/asagaorino0/formlink-api/internal/http/mw"
	"github.com/asagaorino0/formlink-api/internal/line"
	"github.com/asagaorino0/formlink-api/internal/logging"
	"github.com/asagaorino0/formlink-api/internal/repository"
	"github.com/asagaorino0/formlink-api/internal/service"
	"github.com/asagaorino0/formlink-api/internal/shutdown"
	"github.com/asagaorino0/formlink-api/internal/version"
)

func main() {
	// Initialize logger with TTY detection, source paths, and format control
	logger := logging.SetDefault()

	// Log version info first thing
	v := version.Get()
	logger.Info("starting formlink-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Run migrations (with logging for each migration applied)
	if err := database.MigrateWithLogger(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Log current schema version
	schemaVersion, err := database.GetLatestSchemaVersion(db)
	if err != nil {
		logger.Warn("failed to get schema version", "error", err)
	} else if schemaVersion != "" {
		migrationCount, _ := database.GetMigrationCount(db)
		logger.Info("database schema ready", "schema_version", schemaVersion, "migrations_applied", migrationCount)
	}

	// Initialize repositories and services
	repos := repository.NewRepositories(db)
	services, err := service.NewServices(cfg, repos, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	// Idle monitor for scale-to-zero hosting. Pending notification sends
	// hold off shutdown.
	idleMonitor := shutdown.NewIdleMonitor(shutdown.IdleMonitorConfig{
		Timeout:             cfg.IdleTimeout,
		Logger:              logger,
		ExcludePaths:        []string{"/healthz", "/readyz"},
		BackgroundWorkCheck: services.Linkage.NotifyInFlight,
	})
	idleMonitor.Start()

	// Create router
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(idleMonitor.Middleware)

	// Request timeout middleware with different timeouts per endpoint type
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:  constants.DefaultRequestTimeout,
		Extended: constants.DiscoveryRequestTimeout,
		// Discovery walks the proxy fetch chain and needs more headroom
		ExtendedPatterns: []string{"/inspect", "/linkage"},
	}))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request size limit (1MB) - prevent large payload attacks
	router.Use(middleware.RequestSize(1 * 1024 * 1024))

	// Rate limit by IP; the preview endpoint is hit by crawlers too
	router.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))

	// Global concurrency throttle - prevent system overload
	router.Use(middleware.Throttle(100))

	router.Use(mw.APIVersion())
	router.Use(mw.Cache(mw.DefaultCacheConfig()))

	// Create Huma API config for main API with OpenAPI docs
	humaConfig := huma.DefaultConfig("Formlink API", "1.0.0")
	humaConfig.Info.Description = "Links LINE accounts to Google Forms with prefilled entry fields."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "API Server"},
	}
	api := humachi.New(router, humaConfig)

	// Config for hidden routes (K8s probes - no docs needed)
	hiddenConfig := huma.DefaultConfig("Formlink API", "1.0.0")
	hiddenConfig.DocsPath = ""
	hiddenConfig.OpenAPIPath = ""
	hiddenConfig.SchemasPath = ""
	hiddenAPI := humachi.New(router, hiddenConfig)

	// Health check (public, shown in docs)
	huma.Get(api, "/api/v1/health", handlers.HealthCheck)

	// Kubernetes probes (hidden from docs - internal use only)
	huma.Get(hiddenAPI, "/healthz", handlers.Livez)
	readyzHandler := handlers.NewReadyzHandler(db)
	huma.Get(hiddenAPI, "/readyz", readyzHandler.Readyz)

	// Form inspection
	formsHandler := handlers.NewFormsHandler(services.Inspect)
	huma.Get(api, "/api/v1/forms/inspect", formsHandler.InspectForm)

	// LINE users
	lineUsersHandler := handlers.NewLineUsersHandler(repos.LineUsers)
	huma.Post(api, "/api/v1/line-users", lineUsersHandler.UpsertLineUser)
	huma.Get(api, "/api/v1/line-users/{lineUserId}", lineUsersHandler.GetLineUser)

	// Form submissions
	submissionsHandler := handlers.NewSubmissionsHandler(repos.Submissions, repos.LineUsers)
	huma.Post(api, "/api/v1/form-submissions", submissionsHandler.CreateSubmission)
	huma.Get(api, "/api/v1/form-submissions/{lineUserId}", submissionsHandler.ListSubmissions)

	// Linkage orchestration
	linkageHandler := handlers.NewLinkageHandler(services.Linkage, line.NewProfileProvider(), logger)
	huma.Post(api, "/api/v1/linkage", linkageHandler.Link)

	// Direct push
	sendMessageHandler := handlers.NewSendMessageHandler(services.Line)
	huma.Post(api, "/api/v1/line/send-message", sendMessageHandler.SendMessage)

	// Raw HTTP handlers for content negotiation (non-JSON responses)
	previewHandler := handlers.NewLinkPreviewHandler(cfg, services.Inspect, logger)
	router.Get("/api/link-preview", previewHandler.ServeHTTP)
	router.Get("/", handlers.NewAppRootHandler().ServeHTTP)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on signal or idle timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-sigChan:
			logger.Info("shutting down server", "reason", "signal")
		case <-idleMonitor.ShutdownChan():
			logger.Info("shutting down server", "reason", "idle")
		}

		idleMonitor.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	// Start server
	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL, "line_configured", cfg.LineConfigured())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
