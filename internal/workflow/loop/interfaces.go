package loop

import (
	"context"

	"github.com/Cyclone1070/toolgate/internal/provider"
	"github.com/Cyclone1070/toolgate/internal/tool"
	"github.com/Cyclone1070/toolgate/internal/workflow"
)

// llmProvider communicates with an LLM.
type llmProvider interface {
	// Generate sends messages to the LLM and returns its response.
	Generate(ctx context.Context, messages []provider.Message, tools []tool.Declaration) (*provider.Message, error)
}

// toolManager runs a turn's tool calls.
type toolManager interface {
	// Declarations returns all tool schemas for the LLM.
	Declarations() []tool.Declaration

	// ExecuteBatch runs calls concurrently and returns one tool message per
	// call, in call order. It emits ToolStateEvent and UnknownToolEvent.
	ExecuteBatch(ctx context.Context, calls []provider.ToolCall, events chan<- workflow.Event) ([]provider.Message, error)
}
