// Package model defines the core data types for the campaign research job system.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TemplateKind selects the research template and the target schema the
// structuring phase validates against.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type TemplateKind string

// JobStatus represents the current status of a research job.
type JobStatus string

const (
	// TemplateStrategy produces a campaign strategy record.
	TemplateStrategy TemplateKind = "strategy"
	// TemplateBigIdea produces a creative big-idea record.
	TemplateBigIdea TemplateKind = "big-idea"

	// JobStatusPending indicates the job has been accepted but not yet queued remotely.
	JobStatusPending JobStatus = "pending"
	// JobStatusQueued indicates the remote provider has queued the task.
	JobStatusQueued JobStatus = "queued"
	// JobStatusInProgress indicates the remote task is executing.
	JobStatusInProgress JobStatus = "in_progress"
	// JobStatusCompleted indicates the remote task finished successfully. Terminal.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the remote task failed or expired. Terminal.
	JobStatusFailed JobStatus = "failed"
)

// UnmarshalText implements encoding.TextUnmarshaler for TemplateKind to allow env parsing.
func (t *TemplateKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	tk := TemplateKind(v)
	if tk.Valid() {
		*t = tk
		return nil
	}
	return fmt.Errorf("invalid TemplateKind: %q", v)
}

// Valid returns true if the TemplateKind is one of the closed set.
func (t TemplateKind) Valid() bool {
	return t == TemplateStrategy || t == TemplateBigIdea
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusQueued || s == JobStatusInProgress ||
		s == JobStatusCompleted || s == JobStatusFailed
}

// Terminal returns true for statuses after which no further status mutation is permitted.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Rank orders statuses along the lifecycle. Terminal statuses share the top
// rank; a transition is monotonic iff the rank never decreases.
func (s JobStatus) Rank() int {
	switch s {
	case JobStatusPending:
		return 0
	case JobStatusQueued:
		return 1
	case JobStatusInProgress:
		return 2
	case JobStatusCompleted, JobStatusFailed:
		return 3
	default:
		return -1
	}
}

// ErrJobNotFound is returned when a research job does not exist.
var ErrJobNotFound = errors.New("research job not found")

// ResearchJob is the durable record of one remote research task.
type ResearchJob struct {
	ID               string          `json:"id"                          db:"id"`
	SessionID        string          `json:"session_id"                  db:"session_id"`
	ExternalTaskRef  string          `json:"external_task_ref"           db:"external_task_ref"`
	Status           JobStatus       `json:"status"                      db:"status"`
	TemplateKind     TemplateKind    `json:"template_kind"               db:"template_kind"`
	PromptSnapshot   string          `json:"prompt_snapshot"             db:"prompt_snapshot"`
	RawResult        *RawResult      `json:"raw_result,omitempty"        db:"raw_result"`
	StructuredResult json.RawMessage `json:"structured_result,omitempty" db:"structured_result"`
	Error            *string         `json:"error,omitempty"             db:"last_error"`
	CreatedAt        time.Time       `json:"created_at"                  db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"                  db:"updated_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"      db:"completed_at"`
}

// Structured reports whether the Phase-2 structuring step has succeeded.
func (j *ResearchJob) Structured() bool {
	return len(j.StructuredResult) > 0
}

// LaunchJobRequest is the caller-facing request to start a research job.
type LaunchJobRequest struct {
	SessionID    string       `json:"session_id"`
	TemplateKind TemplateKind `json:"template_kind"`
	// Capabilities lists remote provider capability flags. The launcher
	// guarantees the submitted list is never empty.
	Capabilities []string `json:"capabilities,omitempty"`
	// FocusAreas are user-supplied emphasis hints appended to the prompt.
	FocusAreas []string `json:"focus_areas,omitempty"`
}

// Validate validates the LaunchJobRequest fields.
func (r *LaunchJobRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return errors.New("session id is required")
	}
	if !r.TemplateKind.Valid() {
		return fmt.Errorf("invalid template kind: %q", r.TemplateKind)
	}
	return nil
}

// CreateJobRecord groups the fields the launcher persists after a successful
// remote submission.
type CreateJobRecord struct {
	SessionID       string
	ExternalTaskRef string
	Status          JobStatus
	TemplateKind    TemplateKind
	PromptSnapshot  string
}

// JobStatusResponse is the narrow status projection used by pollers.
type JobStatusResponse struct {
	Status      JobStatus  `json:"status"`
	Structured  bool       `json:"structured"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
}
