// Package loop alternates model turns with tool batches until the model
// stops calling tools.
package loop

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Cyclone1070/toolgate/internal/provider"
	"github.com/Cyclone1070/toolgate/internal/workflow"
	"github.com/Cyclone1070/toolgate/internal/workflow/toolmanager"
)

// Loop alternates model turns and tool batches for one conversation.
type Loop struct {
	provider      llmProvider
	tools         toolManager
	events        chan<- workflow.Event
	maxIterations int
	logger        *slog.Logger

	messages []provider.Message
}

// NewLoop creates a loop. events may be nil; a nil logger discards output.
func NewLoop(provider llmProvider, tools toolManager, events chan<- workflow.Event, maxIterations int, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loop{
		provider:      provider,
		tools:         tools,
		events:        events,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Run drives one prompt to completion. A DoneEvent carrying the returned
// error is always the last event sent.
func (l *Loop) Run(ctx context.Context, initialMessage string) (err error) {
	l.messages = []provider.Message{
		{Role: provider.RoleUser, Content: initialMessage},
	}

	defer func() {
		l.emit(workflow.DoneEvent{Err: err})
	}()

	for i := 0; i < l.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.emit(workflow.ThinkingEvent{})

		resp, err := l.provider.Generate(ctx, l.messages, l.tools.Declarations())
		if err != nil {
			return fmt.Errorf("provider.Generate: %w", err)
		}

		toolmanager.AssignIDs(resp.ToolCalls)
		l.messages = append(l.messages, *resp)

		if resp.Content != "" {
			l.emit(workflow.TextEvent{Text: resp.Content})
		}

		if len(resp.ToolCalls) == 0 {
			return nil
		}

		l.logger.Debug("executing tool batch", "iteration", i, "calls", len(resp.ToolCalls))
		results, err := l.tools.ExecuteBatch(ctx, resp.ToolCalls, l.events)
		if err != nil {
			return fmt.Errorf("tools.ExecuteBatch: %w", err)
		}
		l.messages = append(l.messages, results...)
	}

	return fmt.Errorf("max iterations (%d) reached", l.maxIterations)
}

// Messages returns the conversation of the last Run.
func (l *Loop) Messages() []provider.Message {
	out := make([]provider.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *Loop) emit(ev workflow.Event) {
	if l.events != nil {
		l.events <- ev
	}
}
