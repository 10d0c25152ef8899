// Haru - personal planner chat assistant server
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

	"github.com/joho/godotenv"

	"github.com/harubot/haru/internal/ai"
	"github.com/harubot/haru/internal/bot"
	"github.com/harubot/haru/internal/config"
	"github.com/harubot/haru/internal/flow"
	"github.com/harubot/haru/internal/gateway"
	"github.com/harubot/haru/internal/scheduler"
	"github.com/harubot/haru/internal/session"
	"github.com/harubot/haru/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "digest_hour", cfg.DigestHour, "ai_enabled", cfg.AIEnabled())

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	var gen ai.Generator = ai.Disabled{}
	if cfg.AIEnabled() {
		gen = ai.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		slog.Info("AI generator enabled", "model", cfg.OpenAIModel)
	} else {
		slog.Info("AI generator disabled, canned fallbacks only")
	}

	deps := flow.Deps{Repo: repo, Gen: gen, Now: time.Now}

	sessions := session.NewManager(deps, cfg.SessionTTL)
	router := bot.NewRouter(sessions, deps)
	registry := gateway.NewRegistry()
	handler := gateway.NewHandler(router, registry, deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket connections stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions.StartTTLWorker(ctx)

	sched := scheduler.New(repo, gen, registry, cfg.DigestHour, cfg.SweepInterval)
	sched.StartDigestWorker(ctx)
	sched.StartSweepWorker(ctx)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
