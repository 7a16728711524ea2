// Castline development backend: the REST API and chat socket, in memory.
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

	"github.com/ashureev/castline/internal/config"
	"github.com/ashureev/castline/internal/devserver"
	"github.com/ashureev/castline/internal/logging"
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

	logger := logging.New(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	srv, err := devserver.New(devserver.Options{
		Secret:         cfg.Dev.JWTSecret,
		TokenTTL:       cfg.Dev.TokenTTL,
		AllowedOrigins: cfg.Dev.AllowedOrigins,
		Seed:           cfg.Dev.Seed,
		Logger:         logger,
		AccessLog:      true,
		AuthRateLimit:  cfg.Dev.AuthRateLimit,
	})
	if err != nil {
		slog.Error("Failed to initialize dev backend", "error", err)
		os.Exit(1)
	}
	if cfg.Dev.Seed {
		slog.Info("Seeded demo data", "password", devserver.SeedPassword)
	}

	// Chat sockets are long-lived, so there is no WriteTimeout.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Dev.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Dev backend listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
