package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/campaignforge/research-api/config"
	"github.com/campaignforge/research-api/internal/adapters/poller"
	"github.com/campaignforge/research-api/internal/adapters/reaper"
)

// ServiceOrchestrationConfig groups dependencies for running enabled services.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received or a service
// fails; on signal every service stops gracefully before it returns.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	if cfg.Config.IsHTTPServerEnabled() {
		startHTTPService(group, groupCtx, cfg, logger)
	}

	if cfg.Config.IsPollerEnabled() {
		runner, err := poller.NewRunner(poller.RunnerOptions{
			DB:     cfg.DB,
			Client: cfg.Services.Client,
			Config: cfg.Config.Poller,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("wire poller: %w", err)
		}
		group.Go(func() error {
			return runner.Run(groupCtx)
		})
	}

	if cfg.Config.IsReaperEnabled() {
		runner, err := reaper.NewRunner(reaper.RunnerOptions{
			DB:     cfg.DB,
			Config: cfg.Config.Reaper,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("wire reaper: %w", err)
		}
		group.Go(func() error {
			return runner.Run(groupCtx)
		})
	}

	err := group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// startHTTPService runs the HTTP server and its shutdown watcher in the group.
func startHTTPService(
	group *errgroup.Group,
	groupCtx context.Context,
	cfg *ServiceOrchestrationConfig,
	logger *slog.Logger,
) {
	server := NewHTTPServer(cfg.Config.HTTP, cfg.Services, logger)

	group.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		// Shutdown needs a fresh context; groupCtx is already done.
		return ShutdownHTTPServer(context.Background(), server, cfg.Config.HTTP.ShutdownTimeout, logger)
	})
}
