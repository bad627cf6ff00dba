package scheduler

import (
	"encoding/json"
	"time"

	"github.com/Cyclone1070/toolgate/internal/containment"
	"github.com/Cyclone1070/toolgate/internal/policy"
	"github.com/Cyclone1070/toolgate/internal/tool"
)

// State is the position of a call in its lifecycle.
type State string

const (
	StateValidating           State = "validating"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateScheduled            State = "scheduled"
	StateExecuting            State = "executing"
	StateSuccess              State = "success"
	StateError                State = "error"
	StateDenied               State = "denied"
	StateCancelled            State = "cancelled"
)

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateError, StateDenied, StateCancelled:
		return true
	}
	return false
}

// Request is one tool call proposed by the model.
type Request struct {
	ID   string
	Name string
	Args json.RawMessage
}

// Record is the scheduler's view of one call. Copies handed to observers and
// the batch callback are snapshots; the scheduler never mutates them.
type Record struct {
	Request       Request
	State         State
	Description   string
	Decision      policy.Decision
	CorrelationID string
	// Approved is set when an approver accepted the call.
	Approved bool
	Result   tool.Result
	Err      error
	Output   containment.Artifact

	CreatedAt  time.Time
	StartedAt  time.Time // zero until Executing
	FinishedAt time.Time // zero until terminal
}

// Duration is the execution time, or zero if the call never executed.
func (r Record) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Content is what goes back to the model for this call.
func (r Record) Content() string {
	switch r.State {
	case StateSuccess:
		return r.Output.Text
	case StateError:
		if r.Output.Text != "" {
			return "Error: " + r.Output.Text
		}
		if r.Output.Persisted() {
			return "Error: " + r.Err.Error() + "\n\n[Full output saved to " + r.Output.Reference + "]"
		}
		return "Error: " + r.Err.Error()
	case StateDenied:
		if r.Err != nil {
			return "Tool call denied: " + r.Err.Error()
		}
		return "Tool call denied"
	case StateCancelled:
		return "Tool call cancelled"
	}
	return ""
}
