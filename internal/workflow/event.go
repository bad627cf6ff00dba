package workflow

import "github.com/Cyclone1070/toolgate/internal/workflow/scheduler"

// Event is the interface for all workflow events.
// UI handles events via type switch.
type Event interface {
	isEvent()
}

// TextEvent is emitted when the LLM produces text output.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// ThinkingEvent is emitted when the LLM is processing.
type ThinkingEvent struct{}

func (ThinkingEvent) isEvent() {}

// DoneEvent is emitted when the workflow loop completes.
type DoneEvent struct {
	Err error
}

func (DoneEvent) isEvent() {}

// ToolStateEvent is emitted on every state transition of a scheduled call.
type ToolStateEvent struct {
	Record scheduler.Record
}

func (ToolStateEvent) isEvent() {}

// UnknownToolEvent is emitted when the model names a tool that is not
// registered. The call never reaches the scheduler.
type UnknownToolEvent struct {
	CallID   string
	ToolName string
}

func (UnknownToolEvent) isEvent() {}
