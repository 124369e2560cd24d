package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/background"
	"github.com/inkpost/inkpost/internal/config"
	"github.com/inkpost/inkpost/internal/database"
	"github.com/inkpost/inkpost/internal/handlers"
	middlewareCustom "github.com/inkpost/inkpost/internal/middleware"
	"github.com/inkpost/inkpost/internal/repositories"
	"github.com/inkpost/inkpost/internal/routes"
	"github.com/inkpost/inkpost/internal/services"
	"github.com/inkpost/inkpost/internal/storage"
	pkglogger "github.com/inkpost/inkpost/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewVerificationTokenRepository(db)

	// Session issuer
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenExpiry)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Outbound collaborators
	emailService, err := services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	photoStore, err := storage.NewS3PhotoStore(&cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to initialize photo store", slog.Any("error", err))
		os.Exit(1)
	}

	// Services
	verificationService := services.NewVerificationService(
		tokenRepo,
		userRepo,
		emailService,
		logger,
		cfg.Server.PublicBaseURL,
		cfg.Auth.VerificationTokenExpiry,
	)
	authService := services.NewAuthService(userRepo, tokenManager, verificationService, logger, auditLogger)
	userService := services.NewUserService(userRepo, photoStore, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, verificationService)
	userHandler := handlers.NewUserHandler(userService)

	// Background cleanup of expired verification tokens
	cleanupManager := background.NewCleanupManager(tokenRepo, logger, cfg.Auth.CleanupInterval)

	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, userHandler, tokenManager)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
