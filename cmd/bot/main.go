// Vouch broker bot entrypoint.
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

	"github.com/alkaman93/orgazm/internal/admin"
	"github.com/alkaman93/orgazm/internal/bot"
	"github.com/alkaman93/orgazm/internal/config"
	"github.com/alkaman93/orgazm/internal/dialog"
	"github.com/alkaman93/orgazm/internal/menu"
	"github.com/alkaman93/orgazm/internal/session"
	"github.com/alkaman93/orgazm/internal/store"
	"github.com/alkaman93/orgazm/internal/transport"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting bot", "owner", cfg.OwnerUsername, "http_addr", cfg.HTTPAddr)

	// Initialize dependencies.
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

	tg, err := transport.NewTelegram(cfg.BotToken)
	if err != nil {
		slog.Error("Failed to initialize transport", "error", err)
		os.Exit(1)
	}

	// Initialize services.
	sessions := session.NewManager()
	renderer := menu.NewRenderer(tg, cfg.BannerPath, cfg.OwnerUsername, cfg.BotUsername)
	dialogs := dialog.NewController(repo, tg, cfg.AdminID, cfg.OwnerUsername, dialog.Payment{
		TONWallet:  cfg.Payment.TONWallet,
		CardNumber: cfg.Payment.CardNumber,
		CardHolder: cfg.Payment.CardHolder,
		BankName:   cfg.Payment.BankName,
	})
	operator := admin.NewRouter(repo, tg, cfg.OwnerUsername, cfg.BannerPath)
	b := bot.New(cfg.AdminID, repo, tg, sessions, dialogs, renderer, operator)

	// Ops HTTP surface: liveness heartbeat plus a readiness probe that
	// checks storage.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := repo.Ping(req.Context()); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Ops server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Ops server failed", "error", err)
			os.Exit(1)
		}
	}()

	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	slog.Info("Bot running", "admin_id", cfg.AdminID)

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Ops server forced to shutdown", "error", err)
	}

	select {
	case <-done:
	case <-shutdownCtx.Done():
		slog.Warn("Timed out waiting for in-flight events")
	}

	slog.Info("Bot stopped")
}
