package toolmanager

import (
	"context"

	"github.com/Cyclone1070/toolgate/internal/confirmation"
	"github.com/Cyclone1070/toolgate/internal/containment"
	"github.com/Cyclone1070/toolgate/internal/policy"
	"github.com/Cyclone1070/toolgate/internal/tool"
	"github.com/Cyclone1070/toolgate/internal/workflow/scheduler"
)

// toolRegistry stores the available tools. tool.Registry implements it.
type toolRegistry interface {
	Lookup(name string) (tool.Tool, bool)
	Names() []string
	Declarations() []tool.Declaration
	UnknownToolMessage(name string) string
}

// policyChecker classifies calls.
type policyChecker interface {
	Check(call policy.Call) policy.Decision
}

// approvals obtains a decision for calls that need one.
type approvals interface {
	Await(ctx context.Context, req confirmation.Request) (confirmation.Response, error)
}

// outputContainer bounds tool output before it reaches the model.
type outputContainer interface {
	Contain(ctx context.Context, output, sessionID string) (containment.Artifact, error)
}

// recorder receives every finished record, e.g. for session metrics.
type recorder interface {
	Add(rec scheduler.Record)
}
