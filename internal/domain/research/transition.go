// Package research holds the pure status reconciliation state machine.
//
// The transition function has no clock, network, or storage dependency: it
// maps the locally stored status plus a remote task snapshot onto the single
// mutation (if any) the reconciler should perform.
package research

import (
	"github.com/campaignforge/research-api/internal/domain/model"
)

// SnapshotState is the remote provider's view of a task.
type SnapshotState string

const (
	// SnapshotQueued means the provider has accepted but not started the task.
	SnapshotQueued SnapshotState = "queued"
	// SnapshotInProgress means the task is executing.
	SnapshotInProgress SnapshotState = "in_progress"
	// SnapshotCompleted means the task finished successfully.
	SnapshotCompleted SnapshotState = "completed"
	// SnapshotFailed means the task failed remotely.
	SnapshotFailed SnapshotState = "failed"
	// SnapshotNotFound means the provider no longer knows the task reference
	// (retention expiry). Treated as a failure, not a transport error.
	SnapshotNotFound SnapshotState = "not_found"
)

// TaskSnapshot is the reconciler's input from one remote status query.
type TaskSnapshot struct {
	State      SnapshotState
	OutputText string
	ToolTrace  []model.ToolInvocation
	Error      string
}

// TransitionKind discriminates the tagged union returned by Decide.
type TransitionKind int

const (
	// NoChange means local state already matches; nothing to write.
	NoChange TransitionKind = iota
	// Advance means move the local status forward along the lifecycle.
	Advance
	// Complete means write the raw result and the terminal completed status.
	Complete
	// Fail means write the diagnostic error and the terminal failed status.
	Fail
)

// Transition is the decision for one reconcile step.
type Transition struct {
	Kind TransitionKind
	// Status is the target status for Advance.
	Status model.JobStatus
	// Output and Trace carry the raw result for Complete.
	Output string
	Trace  []model.ToolInvocation
	// Reason is the diagnostic error string for Fail.
	Reason string
}

// Decide maps (local status, remote snapshot) onto a Transition. Local
// terminal statuses always yield NoChange regardless of the snapshot, so
// callers polling a finished job never write. Backward remote states (a
// provider re-reporting queued for an in_progress job) also yield NoChange,
// keeping the observed status sequence monotonic.
func Decide(local model.JobStatus, snap TaskSnapshot) Transition {
	if local.Terminal() {
		return Transition{Kind: NoChange}
	}

	switch snap.State {
	case SnapshotQueued:
		return advanceIfForward(local, model.JobStatusQueued)
	case SnapshotInProgress:
		return advanceIfForward(local, model.JobStatusInProgress)
	case SnapshotCompleted:
		return Transition{
			Kind:   Complete,
			Status: model.JobStatusCompleted,
			Output: snap.OutputText,
			Trace:  snap.ToolTrace,
		}
	case SnapshotFailed:
		reason := snap.Error
		if reason == "" {
			reason = "research task failed remotely"
		}
		return Transition{Kind: Fail, Status: model.JobStatusFailed, Reason: reason}
	case SnapshotNotFound:
		return Transition{
			Kind:   Fail,
			Status: model.JobStatusFailed,
			Reason: "research task no longer known to the provider (expired or evicted)",
		}
	default:
		// Providers grow new intermediate statuses; the client passes them
		// through untouched. Stale-but-safe: leave the job alone and let the
		// reaper bound how long it can sit there.
		return Transition{Kind: NoChange}
	}
}

func advanceIfForward(local, target model.JobStatus) Transition {
	if target.Rank() > local.Rank() {
		return Transition{Kind: Advance, Status: target}
	}
	return Transition{Kind: NoChange}
}
