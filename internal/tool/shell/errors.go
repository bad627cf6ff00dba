package shell

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyCommand   = errors.New("command cannot be empty")
	ErrInvalidTimeout = errors.New("timeout_seconds cannot be negative")
	ErrTimeout        = errors.New("command timed out")
)

// TimeoutError carries whatever the command printed before it was stopped.
type TimeoutError struct {
	Timeout time.Duration
	Stdout  string
	Stderr  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %s", e.Timeout)
}
func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// EnvFileError is returned when an env file cannot be resolved or parsed.
type EnvFileError struct {
	Path  string
	Cause error
}

func (e *EnvFileError) Error() string {
	return fmt.Sprintf("env file %s: %v", e.Path, e.Cause)
}
func (e *EnvFileError) Unwrap() error { return e.Cause }
