package tool

import (
	"errors"
	"fmt"
)

// ErrInputType is returned by tools handed an input they did not create.
var ErrInputType = errors.New("unexpected input type")

// ValidationError is returned by Bind when arguments do not satisfy the tool.
type ValidationError struct {
	Tool  string
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %v", e.Tool, e.Cause)
}
func (e *ValidationError) Unwrap() error { return e.Cause }

// SchemaError is returned when a tool's declared parameter schema does not compile.
type SchemaError struct {
	Tool  string
	Cause error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid parameter schema for tool %q: %v", e.Tool, e.Cause)
}
func (e *SchemaError) Unwrap() error { return e.Cause }

// InputTypeError builds the error tools return for a foreign input.
func InputTypeError(tool string, got any) error {
	return fmt.Errorf("%w for %s: %T", ErrInputType, tool, got)
}
