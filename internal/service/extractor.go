package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campaignforge/research-api/internal/core"
	"github.com/campaignforge/research-api/internal/domain/extract"
	"github.com/campaignforge/research-api/internal/domain/model"
)

// ExtractorServiceOptions groups dependencies for ExtractorService.
type ExtractorServiceOptions struct {
	Repo        core.JobRepository // Required: job repository
	Transformer core.TextTransformer
	Logger      *slog.Logger // Optional: structured logger
}

// ExtractorService runs the Phase-2 structuring pass: one transformation
// call, layered JSON extraction, schema validation, then a single guarded
// write of structured_result. It never mutates raw_result or status, so a
// failed structuring attempt is always re-attemptable without re-running the
// original research task.
type ExtractorService struct {
	repo        core.JobRepository
	transformer core.TextTransformer
	logger      *slog.Logger
}

// NewExtractorService constructs a new ExtractorService.
func NewExtractorService(opts ExtractorServiceOptions) (*ExtractorService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Transformer == nil {
		return nil, errors.New("TextTransformer is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "extractor_service")
	}

	return &ExtractorService{
		repo:        opts.Repo,
		transformer: opts.Transformer,
		logger:      logger,
	}, nil
}

// MustNewExtractorService constructs a new ExtractorService and panics on error.
func MustNewExtractorService(opts ExtractorServiceOptions) *ExtractorService {
	svc, err := NewExtractorService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create ExtractorService: %v", err))
	}
	return svc
}

// Structure runs or re-runs the structuring pass for a completed job and
// returns the updated record. Returns extract.ParseError when no layer
// produced JSON and model.SchemaError when the JSON has the wrong shape;
// neither writes anything.
func (s *ExtractorService) Structure(ctx context.Context, jobID string) (*model.ResearchJob, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != model.JobStatusCompleted {
		return nil, fmt.Errorf("job %s is %s; structuring requires a completed job", job.ID, job.Status)
	}
	if job.RawResult == nil || job.RawResult.OutputText == "" {
		return nil, fmt.Errorf("job %s has no raw research output", job.ID)
	}

	response, err := s.transformer.TransformText(ctx, StructuringPrompt(job.TemplateKind, job.RawResult.OutputText))
	if err != nil {
		return nil, fmt.Errorf("transformation call failed: %w", err)
	}

	candidate, err := extract.Extract(response)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "structuring response is not JSON",
				"job_id", job.ID, "error", err)
		}
		return nil, err
	}

	doc, err := model.ValidateStructured(job.TemplateKind, candidate)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "structured result rejected by schema",
				"job_id", job.ID, "template_kind", job.TemplateKind, "error", err)
		}
		return nil, err
	}

	applied, err := s.repo.SetStructuredResult(ctx, job.ID, doc)
	if err != nil {
		return nil, fmt.Errorf("persist structured result: %w", err)
	}
	if !applied {
		// The guarded write only skips when the job left completed status
		// between the read and the write.
		return nil, fmt.Errorf("job %s is no longer completed; structured result not written", job.ID)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "research job structured",
			"job_id", job.ID, "template_kind", job.TemplateKind)
	}
	return s.repo.GetByID(ctx, jobID)
}
