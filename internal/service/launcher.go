// Package service implements the research job orchestration logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/domain/model"
)

const (
	// promptSnapshotLimit bounds the audit copy of the submitted prompt.
	promptSnapshotLimit = 4000

	// defaultCapability is always submitted; some provider modes reject an
	// empty capability list.
	defaultCapability = "web_search"
)

// LauncherServiceOptions groups dependencies for LauncherService.
type LauncherServiceOptions struct {
	Repo      core.JobRepository // Required: job repository
	Client    core.ResearchTaskClient
	Artifacts *ArtifactService
	Logger    *slog.Logger // Optional: structured logger
}

// LauncherService submits background research tasks and creates durable job
// records. A launch makes at most one remote call and at most one insert, in
// that order; any failure leaves zero new rows behind.
type LauncherService struct {
	repo      core.JobRepository
	client    core.ResearchTaskClient
	artifacts *ArtifactService
	logger    *slog.Logger
}

// NewLauncherService constructs a new LauncherService.
func NewLauncherService(opts LauncherServiceOptions) (*LauncherService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Client == nil {
		return nil, errors.New("ResearchTaskClient is required")
	}
	if opts.Artifacts == nil {
		return nil, errors.New("ArtifactService is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "launcher_service")
	}

	return &LauncherService{
		repo:      opts.Repo,
		client:    opts.Client,
		artifacts: opts.Artifacts,
		logger:    logger,
	}, nil
}

// MustNewLauncherService constructs a new LauncherService and panics on error.
func MustNewLauncherService(opts LauncherServiceOptions) *LauncherService {
	svc, err := NewLauncherService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create LauncherService: %v", err))
	}
	return svc
}

// Launch starts one research job. Prerequisite checks run before the remote
// call; remote failures surface as StartError with no job record created.
// Idempotency at the launch boundary is the caller's responsibility.
func (s *LauncherService) Launch(ctx context.Context, req *model.LaunchJobRequest) (*model.ResearchJob, error) {
	if req == nil {
		return nil, &StartError{Reason: "launch request is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, &StartError{Reason: "invalid launch request", Cause: err}
	}

	artifacts, err := s.artifacts.Load(ctx, req.SessionID)
	if err != nil {
		return nil, &StartError{Reason: "loading session artifacts failed", Cause: err}
	}
	if !artifacts.HasParsedBrief() {
		return nil, &StartError{Reason: "session has no parsed brief; parse the campaign brief before launching research"}
	}

	prompt := AssemblePrompt(req.TemplateKind, artifacts, req.FocusAreas)

	created, err := s.client.CreateResearchTask(ctx, core.CreateResearchTaskParams{
		Prompt:       prompt,
		TemplateKind: req.TemplateKind,
		Capabilities: ensureCapabilities(req.Capabilities),
	})
	if err != nil {
		return nil, &StartError{Reason: "remote task submission failed", Cause: err}
	}

	job, err := s.repo.Create(ctx, model.CreateJobRecord{
		SessionID:       req.SessionID,
		ExternalTaskRef: created.TaskRef,
		Status:          launchStatus(created.Status),
		TemplateKind:    req.TemplateKind,
		PromptSnapshot:  truncateRunes(prompt, promptSnapshotLimit),
	})
	if err != nil {
		// The remote task is already running and cannot be recalled; the
		// reaper will eventually fail any record we could not write.
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "job record insert failed after remote submission",
				"session_id", req.SessionID,
				"task_ref", created.TaskRef,
				"error", err,
			)
		}
		return nil, fmt.Errorf("create job record: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "research job launched",
			"job_id", job.ID,
			"session_id", job.SessionID,
			"template_kind", job.TemplateKind,
			"status", job.Status,
		)
	}
	return job, nil
}

// ensureCapabilities guarantees a non-empty capability list.
func ensureCapabilities(caps []string) []string {
	out := make([]string, 0, len(caps)+1)
	seen := map[string]bool{}
	for _, c := range caps {
		if c != "" && !seen[c] {
			out = append(out, c)
			seen[c] = true
		}
	}
	if len(out) == 0 {
		out = append(out, defaultCapability)
	}
	return out
}

// launchStatus trusts the provider's create-time status; anything outside the
// expected pair defaults to queued.
func launchStatus(status model.JobStatus) model.JobStatus {
	if status == model.JobStatusPending || status == model.JobStatusQueued {
		return status
	}
	return model.JobStatusQueued
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
