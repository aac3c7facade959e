// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command supporterd runs the supporter registry HTTP service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/teamkwabo-boop/project29-backend/internal/auth"
	"github.com/teamkwabo-boop/project29-backend/internal/config"
	"github.com/teamkwabo-boop/project29-backend/internal/handler"
	"github.com/teamkwabo-boop/project29-backend/internal/logging"
	"github.com/teamkwabo-boop/project29-backend/internal/middleware"
	"github.com/teamkwabo-boop/project29-backend/internal/registry"
	"github.com/teamkwabo-boop/project29-backend/internal/report"
	"github.com/teamkwabo-boop/project29-backend/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "supporterd - Supporter Registry Service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPPORTERD_JWT_SECRET          Token signing secret (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPPORTERD_DB_PATH             SQLite database path (default: ./data/supporterd.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPPORTERD_SERVER_PORT         Server port (default: 4000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPPORTERD_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPPORTERD_ADMIN_USERNAME      Seeded admin username (default: admin)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPPORTERD_ADMIN_PASSWORD      Seeded admin password (default: changeMe123, rotate it)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPPORTERD_AGE_REFERENCE_DATE  Projected-age reference date (default: 2029-10-01)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("supporterd %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed the admin credential
	ctx := context.Background()
	if err := store.Seed(ctx, db, store.SeedParams{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Build services
	queries := store.New(db)
	tokenService := auth.NewTokenService(cfg.JWTSecret)
	registryService := registry.NewService(queries, cfg.AgeReferenceDate())
	reportService := report.NewService(queries)
	slog.Info("services initialized", "age_reference", cfg.AgeReference)

	// Initialize login protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Global API rate limiter (20 requests per second with burst of 40 per IP)
	apiRateLimiter := middleware.NewGlobalRateLimiter(20, 40)
	slog.Info("api rate limiter initialized", "rate", "20 req/s", "burst", 40)

	// Initialize handlers
	supporterHandler := handler.NewSupporterHandler(registryService)
	authHandler := handler.NewAuthHandler(queries, tokenService, loginProtection)
	statsHandler := handler.NewStatsHandler(reportService)
	eventsHandler := handler.NewEventsHandler(queries)
	healthHandler := handler.NewHealthHandler(db, tokenService)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))

	// Health check routes (public, returns additional details for authenticated callers)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())

		// Public endpoints
		r.Post("/supporters", supporterHandler.Submit)
		r.Get("/supporters", supporterHandler.List)
		r.With(loginProtection.Middleware()).Post("/admin/login", authHandler.Login)

		// Protected endpoints (bearer token required)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokenService))
			r.Get("/stats", statsHandler.Stats)
			r.Get("/export/csv", statsHandler.ExportCSV)
			r.Get("/events", eventsHandler.List)
			r.Post("/admin/password", authHandler.ChangePassword)
		})
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Allow slow CSV downloads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
