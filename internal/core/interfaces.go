// Package core defines the ports between services and their collaborators.
// Implementations live in internal/data and internal/adapters; mocks are
// generated into internal/mocks.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/campaignforge/research-api/internal/domain/model"
	"github.com/campaignforge/research-api/internal/domain/research"
)

// ErrTaskNotFound is the sentinel a ResearchTaskClient returns when the
// provider no longer knows the task reference.
var ErrTaskNotFound = errors.New("research task not found")

// CreateResearchTaskParams carries one background task submission.
type CreateResearchTaskParams struct {
	Prompt       string
	TemplateKind model.TemplateKind
	// Capabilities must be non-empty; some provider modes reject an empty
	// list. The launcher enforces this before calling.
	Capabilities []string
}

// CreateResearchTaskResult is the provider's acknowledgement of a submission.
type CreateResearchTaskResult struct {
	TaskRef string
	Status  model.JobStatus
}

// ResearchTaskClient is the remote research provider port.
type ResearchTaskClient interface {
	// CreateResearchTask submits one background research task.
	CreateResearchTask(ctx context.Context, params CreateResearchTaskParams) (CreateResearchTaskResult, error)
	// GetResearchTask fetches the current snapshot for a task reference.
	// Returns ErrTaskNotFound (possibly wrapped) when the provider has
	// expired or forgotten the reference.
	GetResearchTask(ctx context.Context, taskRef string) (research.TaskSnapshot, error)
}

// TextTransformer is the single-shot transformation port used by the
// structuring phase.
type TextTransformer interface {
	TransformText(ctx context.Context, prompt string) (string, error)
}

// CompleteJobParams carries the terminal-success write for a job.
type CompleteJobParams struct {
	ID     string
	Result model.RawResult
}

// JobRepository persists research job records. Every mutation is narrow and
// conditional; the bool results report whether the guarded write applied.
type JobRepository interface {
	Create(ctx context.Context, rec model.CreateJobRecord) (*model.ResearchJob, error)
	GetByID(ctx context.Context, id string) (*model.ResearchJob, error)
	// AdvanceStatus moves a non-terminal job to the given status. The write
	// only applies when it moves the status forward.
	AdvanceStatus(ctx context.Context, id string, status model.JobStatus) (bool, error)
	// Complete writes the raw result and terminal completed status. Guarded
	// against already-terminal rows; racing reconcilers converge.
	Complete(ctx context.Context, params CompleteJobParams) (bool, error)
	// Fail writes the diagnostic error and terminal failed status, with the
	// same terminal guard as Complete.
	Fail(ctx context.Context, id string, reason string) (bool, error)
	// SetStructuredResult writes the Phase-2 document. Applies only while the
	// job is completed; never touches status or raw_result.
	SetStructuredResult(ctx context.Context, id string, doc []byte) (bool, error)
	ListBySession(ctx context.Context, sessionID string) ([]*model.ResearchJob, error)
	// ListActive returns jobs whose status is non-terminal, oldest first.
	ListActive(ctx context.Context, limit int) ([]*model.ResearchJob, error)
	// FailStale fails jobs stuck non-terminal for longer than maxAge.
	FailStale(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
	// WaitForNewJob blocks until a job insert signals the store's notify
	// channel or the context ends. Pollers use it to sweep promptly instead
	// of waiting out the full interval.
	WaitForNewJob(ctx context.Context) error
}

// ArtifactRepository reads the upstream session artifacts this core consumes.
type ArtifactRepository interface {
	GetSessionArtifacts(ctx context.Context, sessionID string) (*model.SessionArtifacts, error)
}

// CacheRepository is a minimal byte cache with TTL.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// TimeProvider abstracts the clock for deterministic tests.
type TimeProvider interface {
	Now() time.Time
}
