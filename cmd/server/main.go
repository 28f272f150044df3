package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/config"
	"github.com/stemsi/dictant-backend/internal/database"
	"github.com/stemsi/dictant-backend/internal/handler"
	"github.com/stemsi/dictant-backend/internal/logger"
	"github.com/stemsi/dictant-backend/internal/middleware"
	"github.com/stemsi/dictant-backend/internal/router"
	"github.com/stemsi/dictant-backend/internal/service"
	"github.com/stemsi/dictant-backend/internal/validator"
	"github.com/stemsi/dictant-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Dictant Backend")

	if cfg.AdminPasswordHash == "" {
		log.Warn().Msg("ADMIN_PASSWORD_HASH is empty; admin login is disabled")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect Storage and Notifications ─────────────────────────────
	backend, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage backend")
	}
	defer backend.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	admissionService := service.NewAdmissionService(backend.Store, authService, cfg, log)
	settingService := service.NewSettingService(backend.Store, log)
	sessionService := service.NewExamSessionService(backend.Store, log)
	submissionService := service.NewSubmissionService(backend.Store, log)
	monitorService := service.NewMonitorService(backend.Store, admissionService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	checks := make(map[string]handler.HealthCheck, len(backend.Checks))
	for name, check := range backend.Checks {
		checks[name] = check
	}

	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, log),
		StudentPortal: handler.NewStudentPortalHandler(admissionService, backend.Bus, log),
		Setting:       handler.NewSettingHandler(settingService, backend.Bus, cfg.MaxUploadBytes, log),
		Exam:          handler.NewExamHandler(sessionService, cfg.MaxUploadBytes, log),
		Submission:    handler.NewSubmissionHandler(submissionService, log),
		Export:        handler.NewExportHandler(submissionService, settingService, log),
		Monitor:       handler.NewMonitorHandler(backend.Bus, backend.Bus, admissionService, monitorService, log),
		WS:            handler.NewWSHandler(admissionService, backend.Bus, log, cfg.AllowedOrigins),
		System:        handler.NewSystemHandler(checks, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	startLimiter := middleware.NewRateLimiter(cfg.StartRatePerMinute, time.Minute)
	go startLimiter.Run(workerCtx)

	staleWorker := worker.NewStaleWorker(admissionService, backend.Bus, cfg.StaleSweepInterval, log)
	go staleWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, startLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. Open SSE and WebSocket streams
	// end when their request contexts are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
