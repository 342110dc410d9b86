// Package poller provides the background status reconciliation loop.
//
// The orchestration core is pull-based: nothing in-process waits on a remote
// task. This runner is the external scheduler for deployments that want
// server-side reconciliation instead of (or in addition to) client-driven
// polling.
package poller

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campaignforge/research-api/config"
	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/data"
	"github.com/campaignforge/research-api/internal/service"
)

// Runner sweeps all non-terminal jobs through the reconciler on a fixed
// interval, waking early when the store signals a fresh insert.
type Runner struct {
	reconciler *service.ReconcilerService
	repo       core.JobRepository
	cfg        config.PollerConfig
	logger     *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	DB     *sql.DB
	Client core.ResearchTaskClient
	Config config.PollerConfig
	Logger *slog.Logger

	// Optional dependency injection for testing/decoupling
	Repo core.JobRepository
}

// NewRunner creates a new poller runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Client == nil {
		return nil, errors.New("research task client is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	repo := opts.Repo
	if repo == nil {
		if opts.DB == nil {
			return nil, errors.New("database connection is required")
		}
		repo = data.NewJobRepo(opts.DB, data.RepoConfig{Logger: opts.Logger})
	}

	reconciler, err := service.NewReconcilerService(service.ReconcilerServiceOptions{
		Repo:   repo,
		Client: opts.Client,
		Logger: opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire reconciler service: %w", err)
	}

	return &Runner{
		reconciler: reconciler,
		repo:       repo,
		cfg:        opts.Config,
		logger:     opts.Logger,
	}, nil
}

// Run starts the polling loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting poller runner",
		"interval", r.cfg.Interval, "batch_size", r.cfg.BatchSize)

	wake := make(chan struct{}, 1)
	go r.watchForNewJobs(ctx, wake)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "poller runner stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			r.sweep(ctx)
		case <-wake:
			r.sweep(ctx)
		}
	}
}

func (r *Runner) sweep(ctx context.Context) {
	count, err := r.reconciler.ReconcileActive(ctx, r.cfg.BatchSize)
	if err != nil && !errors.Is(err, context.Canceled) {
		r.logger.ErrorContext(ctx, "reconcile sweep failed",
			"reconciled", count, "error", err)
		return
	}
	if count > 0 {
		r.logger.DebugContext(ctx, "reconcile sweep finished", "reconciled", count)
	}
}

// watchForNewJobs forwards store insert notifications onto the wake channel.
// The buffered send coalesces bursts into one pending sweep.
func (r *Runner) watchForNewJobs(ctx context.Context, wake chan<- struct{}) {
	for ctx.Err() == nil {
		if err := r.repo.WaitForNewJob(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.WarnContext(ctx, "job notification wait failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}
