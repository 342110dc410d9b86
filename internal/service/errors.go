package service

import "fmt"

// StartError reports a launch that produced no job record: either a required
// upstream artifact is missing (no remote call was made) or the remote
// submission failed. The caller retries the whole launch.
type StartError struct {
	Reason string
	Cause  error
}

func (e *StartError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("research job launch failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("research job launch failed: %s", e.Reason)
}

func (e *StartError) Unwrap() error {
	return e.Cause
}

// PollTransientError reports a transient failure contacting the remote
// provider during reconciliation. Local state is untouched; the caller polls
// again later.
type PollTransientError struct {
	Cause error
}

func (e *PollTransientError) Error() string {
	return fmt.Sprintf("transient error polling research task: %v", e.Cause)
}

func (e *PollTransientError) Unwrap() error {
	return e.Cause
}
