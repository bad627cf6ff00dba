package fsutil

import (
	"errors"
	"fmt"
)

// ErrInvalidOffset is returned for negative read offsets.
var ErrInvalidOffset = errors.New("invalid offset")

// WriteError is returned when an atomic write fails at some stage.
type WriteError struct {
	Path  string
	Stage string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s (%s): %v", e.Path, e.Stage, e.Cause)
}
func (e *WriteError) Unwrap() error { return e.Cause }
