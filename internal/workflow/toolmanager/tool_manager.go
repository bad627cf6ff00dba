// Package toolmanager turns the model's tool calls into scheduler batches
// and the finished records back into conversation messages.
package toolmanager

import (
	"context"
	"io"
	"log/slog"

	"github.com/Cyclone1070/toolgate/internal/provider"
	"github.com/Cyclone1070/toolgate/internal/tool"
	"github.com/Cyclone1070/toolgate/internal/workflow"
	"github.com/Cyclone1070/toolgate/internal/workflow/scheduler"
	"github.com/google/uuid"
)

// Config holds settings shared by every batch.
type Config struct {
	SessionID   string
	MaxParallel int
	// Recorder is optional.
	Recorder recorder
	Logger   *slog.Logger
}

// ToolManager runs the tool calls of one model turn as a scheduled batch.
type ToolManager struct {
	registry  toolRegistry
	policy    policyChecker
	approvals approvals
	container outputContainer
	cfg       Config
	logger    *slog.Logger
}

// NewToolManager creates a manager. Every dependency is required.
func NewToolManager(registry toolRegistry, checker policyChecker, approvals approvals, container outputContainer, cfg Config) *ToolManager {
	if registry == nil {
		panic("registry is required")
	}
	if checker == nil {
		panic("checker is required")
	}
	if approvals == nil {
		panic("approvals is required")
	}
	if container == nil {
		panic("container is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ToolManager{
		registry:  registry,
		policy:    checker,
		approvals: approvals,
		container: container,
		cfg:       cfg,
		logger:    logger,
	}
}

func (m *ToolManager) Declarations() []tool.Declaration {
	return m.registry.Declarations()
}

// AssignIDs gives every call without an id, or with an id already used
// earlier in the batch, a fresh one. It modifies calls in place.
func AssignIDs(calls []provider.ToolCall) {
	seen := make(map[string]struct{}, len(calls))
	for i := range calls {
		if _, dup := seen[calls[i].ID]; calls[i].ID == "" || dup {
			calls[i].ID = "call_" + uuid.NewString()
		}
		seen[calls[i].ID] = struct{}{}
	}
}

// ExecuteBatch runs calls as one scheduler batch and returns one tool
// message per call, in call order. Calls naming unknown tools are answered
// directly and never scheduled. Call ids must be unique; see AssignIDs.
//
// Events are sent synchronously, so the receiver must keep draining
// events until the batch returns.
func (m *ToolManager) ExecuteBatch(ctx context.Context, calls []provider.ToolCall, events chan<- workflow.Event) ([]provider.Message, error) {
	messages := make([]provider.Message, len(calls))
	reqs := make([]scheduler.Request, 0, len(calls))
	indexes := make([]int, 0, len(calls))

	for i, tc := range calls {
		if _, ok := m.registry.Lookup(tc.Function.Name); !ok {
			m.logger.Warn("model requested unknown tool", "id", tc.ID, "tool", tc.Function.Name)
			emit(events, workflow.UnknownToolEvent{CallID: tc.ID, ToolName: tc.Function.Name})
			messages[i] = provider.Message{
				Role:       provider.RoleTool,
				ToolCallID: tc.ID,
				ToolName:   tc.Function.Name,
				Content:    m.registry.UnknownToolMessage(tc.Function.Name),
			}
			continue
		}
		reqs = append(reqs, scheduler.Request{ID: tc.ID, Name: tc.Function.Name, Args: tc.Function.Arguments})
		indexes = append(indexes, i)
	}

	if len(reqs) == 0 {
		return messages, nil
	}

	sched := scheduler.New(m.registry, m.policy, m.approvals, m.container, scheduler.Config{
		SessionID:   m.cfg.SessionID,
		MaxParallel: m.cfg.MaxParallel,
		Logger:      m.logger,
		Observer: func(rec scheduler.Record) {
			emit(events, workflow.ToolStateEvent{Record: rec})
		},
	})

	records, err := sched.Run(ctx, reqs)
	if err != nil {
		return nil, err
	}

	for j, rec := range records {
		if m.cfg.Recorder != nil {
			m.cfg.Recorder.Add(rec)
		}
		messages[indexes[j]] = provider.Message{
			Role:       provider.RoleTool,
			ToolCallID: rec.Request.ID,
			ToolName:   rec.Request.Name,
			Content:    rec.Content(),
		}
	}
	return messages, nil
}

func emit(events chan<- workflow.Event, ev workflow.Event) {
	if events != nil {
		events <- ev
	}
}
