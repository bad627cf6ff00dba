package confirmation

import (
	"errors"
	"fmt"
)

// ErrNoApprover is returned when a request is published with nobody subscribed to answer it.
var ErrNoApprover = errors.New("no approver subscribed to confirmation requests")

// ErrUnknownMessage is returned by Publish for message types the bus does not route.
var ErrUnknownMessage = errors.New("unknown confirmation message type")

// RefusedError is returned by Await when the approver declined the call.
type RefusedError struct {
	ToolName string
	Reason   string
}

func (e *RefusedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("tool call %s refused by user", e.ToolName)
	}
	return fmt.Sprintf("tool call %s refused by user: %s", e.ToolName, e.Reason)
}

// PublishError is returned when a request handler fails while handling a published request.
type PublishError struct {
	Token string
	Cause error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish confirmation request %s: %v", e.Token, e.Cause)
}
func (e *PublishError) Unwrap() error { return e.Cause }
