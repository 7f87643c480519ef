package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olegrjumin/privacyparrot/internal/app"
	"github.com/olegrjumin/privacyparrot/internal/config"
	"github.com/olegrjumin/privacyparrot/internal/httpapi"
	"github.com/olegrjumin/privacyparrot/internal/logging"
)

func main() {
	logger := logging.New()

	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("Ignoring env file", "error", err)
	}

	// Load configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize service", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := httpapi.NewServer(addr, logger, a.Service)

	// Channel to listen for OS signals (Ctrl+C, kill, etc.)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
		}
	}()

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := a.Close(); err != nil {
		logger.Error("Failed to close browsers", "error", err)
	}

	logger.Info("Server stopped gracefully")
}
