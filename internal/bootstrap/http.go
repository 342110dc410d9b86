package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/campaignforge/research-api/config"
	httpx "github.com/campaignforge/research-api/internal/http"
)

// NewHTTPServer builds the HTTP server around the configured router.
func NewHTTPServer(cfg config.HTTPConfig, services ServiceContainer, logger *slog.Logger) *http.Server {
	router := httpx.NewRouter(httpx.RouterServices{
		Launcher:   services.Launcher,
		Reconciler: services.Reconciler,
		Extractor:  services.Extractor,
		Jobs:       services.Jobs,
		Logger:     logger,
	})

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}
