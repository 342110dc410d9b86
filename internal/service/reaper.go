package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campaignforge/research-api/config"
	"github.com/campaignforge/research-api/internal/core"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Repo   core.JobRepository  // Required: job repository
	Config config.ReaperConfig // Required: reaper configuration
	Logger *slog.Logger        // Optional: structured logger
}

// ReaperService applies the bounded staleness policy: jobs stuck non-terminal
// past the configured maximum age are failed in batches with a diagnostic
// error. The reconciler itself never gives up on a job; this loop is the only
// thing that does.
type ReaperService struct {
	repo   core.JobRepository
	config config.ReaperConfig
	logger *slog.Logger
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("reaper interval must be positive")
	}
	if opts.Config.MaxJobAge <= 0 {
		return nil, errors.New("reaper max job age must be positive")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "reaper_service")
		logger.Debug("ReaperService initialized",
			"interval", opts.Config.Interval,
			"max_job_age", opts.Config.MaxJobAge,
			"batch_size", opts.Config.BatchSize,
		)
	}

	return &ReaperService{
		repo:   opts.Repo,
		config: opts.Config,
		logger: logger,
	}, nil
}

// MustNewReaperService constructs a new ReaperService and panics on error.
func MustNewReaperService(opts ReaperServiceOptions) *ReaperService {
	svc, err := NewReaperService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create ReaperService: %v", err))
	}
	return svc
}

// Run starts the reaper loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting reaper service", "interval", s.config.Interval)
	}

	// Jitter prevents a thundering herd when several instances start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.Sweep(ctx); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "initial reaper sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil && s.logger != nil {
				s.logger.ErrorContext(ctx, "reaper sweep failed", "error", err)
			}
		}
	}
}

// Sweep fails one batch of stale jobs and returns the count.
func (s *ReaperService) Sweep(ctx context.Context) error {
	count, err := s.repo.FailStale(ctx, s.config.MaxJobAge, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("fail stale jobs: %w", err)
	}
	if count > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "reaped stale research jobs", "count", count)
	}
	return nil
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
