package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schoolsite/school-content/internal/api"
	"github.com/schoolsite/school-content/pkg/schoolcontent"
	"github.com/schoolsite/school-content/pkg/schoolcontent/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load(config.WithEnvFile(".env"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svc, err := cfg.BuildService(logger)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	var legacy schoolcontent.BlobStore
	if cfg.UploadDir != "" {
		store, err := cfg.BuildLegacyStore()
		if err != nil {
			return fmt.Errorf("failed to open uploads dir: %w", err)
		}
		legacy = store
	}

	server := api.NewServer(svc, legacy, cfg.JWTSecret, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"database", cfg.DatabaseType,
			"remote_storage", cfg.Storage.Configured())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
