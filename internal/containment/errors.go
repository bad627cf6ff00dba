package containment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSessionID is returned for session ids that are empty or would escape the artifact root.
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrInvalidReference is returned by Read for references outside the store.
	ErrInvalidReference = errors.New("invalid artifact reference")
	// ErrEmptySummary is returned when the summarizer produced no text.
	ErrEmptySummary = errors.New("summarizer returned an empty summary")
	// ErrThresholdTooSmall is returned when the threshold leaves no room for a summary.
	ErrThresholdTooSmall = errors.New("containment threshold leaves no room for a summary")
)

// PersistError is returned when the full output could not be written.
// Nothing is returned to the model in this case.
type PersistError struct {
	SessionID string
	Cause     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist output for session %s: %v", e.SessionID, e.Cause)
}
func (e *PersistError) Unwrap() error { return e.Cause }

// SummaryError is returned when summarization failed after the output was
// persisted. Reference points at the saved full output.
type SummaryError struct {
	Reference string
	Cause     error
}

func (e *SummaryError) Error() string {
	return fmt.Sprintf("failed to summarize output (full output saved to %s): %v", e.Reference, e.Cause)
}
func (e *SummaryError) Unwrap() error { return e.Cause }
