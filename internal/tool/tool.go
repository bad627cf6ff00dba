// Package tool defines what the scheduler needs from a tool: a declaration
// for the model, a typed input, argument binding and an execution entry point.
package tool

import "context"

// Tool is implemented by every built-in tool.
// Input structs should implement fmt.Stringer for display and Validator for
// checks the JSON schema cannot express.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Declaration returns the tool's schema for the LLM.
	Declaration() Declaration

	// Input returns a pointer to a fresh input struct (e.g., &ReadFileInput{}).
	Input() any

	// Execute runs the tool with the bound input. Implementations must
	// observe ctx and stop promptly when it is cancelled.
	Execute(ctx context.Context, input any) (Result, error)
}

// Result is returned by tools after execution.
type Result interface {
	// LLMContent returns the string content sent to the LLM.
	LLMContent() string

	// Display returns the display type for UI rendering.
	Display() ToolDisplay
}

// Validator is implemented by inputs with semantic checks.
type Validator interface {
	Validate() error
}

// TextResult is a Result whose display is its content.
type TextResult struct {
	Content string
	Summary string // optional short display text
}

func (r TextResult) LLMContent() string { return r.Content }

func (r TextResult) Display() ToolDisplay {
	if r.Summary != "" {
		return StringDisplay(r.Summary)
	}
	return StringDisplay(r.Content)
}
