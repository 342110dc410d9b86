package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/domain/model"
	"github.com/campaignforge/research-api/internal/domain/research"
)

// ReconcilerServiceOptions groups dependencies for ReconcilerService.
type ReconcilerServiceOptions struct {
	Repo         core.JobRepository // Required: job repository
	Client       core.ResearchTaskClient
	TimeProvider core.TimeProvider // Optional: clock override for tests
	Logger       *slog.Logger      // Optional: structured logger
}

// ReconcilerService merges remote task state into local job records. It is
// safe to call at arbitrary, possibly overlapping, cadence: terminal local
// state short-circuits with zero remote calls, and every write is a
// conditional update that racing reconcilers converge on.
type ReconcilerService struct {
	repo   core.JobRepository
	client core.ResearchTaskClient
	clock  core.TimeProvider
	logger *slog.Logger
}

// NewReconcilerService constructs a new ReconcilerService.
func NewReconcilerService(opts ReconcilerServiceOptions) (*ReconcilerService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Client == nil {
		return nil, errors.New("ResearchTaskClient is required")
	}

	clock := opts.TimeProvider
	if clock == nil {
		clock = systemClock{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "reconciler_service")
	}

	return &ReconcilerService{
		repo:   opts.Repo,
		client: opts.Client,
		clock:  clock,
		logger: logger,
	}, nil
}

// MustNewReconcilerService constructs a new ReconcilerService and panics on error.
func MustNewReconcilerService(opts ReconcilerServiceOptions) *ReconcilerService {
	svc, err := NewReconcilerService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create ReconcilerService: %v", err))
	}
	return svc
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Reconcile polls the remote provider for one job and persists any resulting
// transition. Terminal local state returns the cached record without a remote
// call. Transient provider errors surface as PollTransientError and leave
// local state untouched.
func (s *ReconcilerService) Reconcile(ctx context.Context, jobID string) (*model.ResearchJob, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status.Terminal() {
		return job, nil
	}

	snap, err := s.client.GetResearchTask(ctx, job.ExternalTaskRef)
	if err != nil {
		if errors.Is(err, core.ErrTaskNotFound) {
			snap = research.TaskSnapshot{State: research.SnapshotNotFound}
		} else {
			return nil, &PollTransientError{Cause: err}
		}
	}

	transition := research.Decide(job.Status, snap)
	if err := s.apply(ctx, job, transition); err != nil {
		return nil, err
	}

	// Re-read so racing reconcilers all return the stored record, not their
	// own candidate payload.
	if transition.Kind == research.NoChange {
		return job, nil
	}
	return s.repo.GetByID(ctx, jobID)
}

func (s *ReconcilerService) apply(ctx context.Context, job *model.ResearchJob, tr research.Transition) error {
	switch tr.Kind {
	case research.NoChange:
		return nil

	case research.Advance:
		applied, err := s.repo.AdvanceStatus(ctx, job.ID, tr.Status)
		if err != nil {
			return fmt.Errorf("advance job %s: %w", job.ID, err)
		}
		if applied && s.logger != nil {
			s.logger.InfoContext(ctx, "research job advanced",
				"job_id", job.ID, "from", job.Status, "to", tr.Status)
		}
		return nil

	case research.Complete:
		applied, err := s.repo.Complete(ctx, core.CompleteJobParams{
			ID: job.ID,
			Result: model.RawResult{
				OutputText: tr.Output,
				ToolTrace:  tr.Trace,
				ReceivedAt: s.clock.Now().UTC(),
			},
		})
		if err != nil {
			return fmt.Errorf("complete job %s: %w", job.ID, err)
		}
		if s.logger != nil {
			s.logger.InfoContext(ctx, "research job completed",
				"job_id", job.ID, "write_applied", applied)
		}
		return nil

	case research.Fail:
		applied, err := s.repo.Fail(ctx, job.ID, tr.Reason)
		if err != nil {
			return fmt.Errorf("fail job %s: %w", job.ID, err)
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "research job failed",
				"job_id", job.ID, "reason", tr.Reason, "write_applied", applied)
		}
		return nil

	default:
		return fmt.Errorf("unknown transition kind %d for job %s", tr.Kind, job.ID)
	}
}

// ReconcileActive reconciles every non-terminal job once, for the background
// poller. Transient errors are logged and skipped so one flaky task does not
// stall the sweep.
func (s *ReconcilerService) ReconcileActive(ctx context.Context, limit int) (int, error) {
	jobs, err := s.repo.ListActive(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list active jobs: %w", err)
	}

	reconciled := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			return reconciled, ctx.Err()
		}
		if _, err := s.Reconcile(ctx, job.ID); err != nil {
			var transient *PollTransientError
			if errors.As(err, &transient) {
				if s.logger != nil {
					s.logger.WarnContext(ctx, "skipping job after transient poll error",
						"job_id", job.ID, "error", err)
				}
				continue
			}
			return reconciled, err
		}
		reconciled++
	}
	return reconciled, nil
}
