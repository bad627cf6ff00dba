package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPolicyDenied is attached to records denied by a rule or the default decision.
	ErrPolicyDenied = errors.New("denied by policy")
	// ErrAlreadyScheduled is returned by a second Schedule on the same instance.
	ErrAlreadyScheduled = errors.New("scheduler already used for a batch")
	ErrNilCallback      = errors.New("completion callback is required")
)

// UnknownToolError rejects a batch naming a tool that is not registered.
type UnknownToolError struct {
	Name      string
	Available []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// DuplicateCallIDError rejects a batch that reuses a request id.
type DuplicateCallIDError struct {
	ID string
}

func (e *DuplicateCallIDError) Error() string {
	return fmt.Sprintf("duplicate tool call id %q", e.ID)
}

// ExecutionError wraps a failure raised by a tool.
type ExecutionError struct {
	Tool  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Cause)
}
func (e *ExecutionError) Unwrap() error { return e.Cause }

// CallError is returned by RunOne for a call that did not succeed.
type CallError struct {
	ID    string
	Tool  string
	State State
	Cause error
}

func (e *CallError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("tool call %s (%s) ended %s", e.ID, e.Tool, e.State)
	}
	return fmt.Sprintf("tool call %s (%s) ended %s: %v", e.ID, e.Tool, e.State, e.Cause)
}
func (e *CallError) Unwrap() error { return e.Cause }
