package scheduler

import (
	"context"

	"github.com/Cyclone1070/toolgate/internal/confirmation"
	"github.com/Cyclone1070/toolgate/internal/containment"
	"github.com/Cyclone1070/toolgate/internal/policy"
	"github.com/Cyclone1070/toolgate/internal/tool"
)

// toolRegistry resolves tool names. tool.Registry implements it.
type toolRegistry interface {
	Lookup(name string) (tool.Tool, bool)
	Names() []string
}

// policyChecker classifies calls. policy.Engine implements it.
type policyChecker interface {
	Check(call policy.Call) policy.Decision
}

// approvals obtains a decision from whoever listens on the bus.
type approvals interface {
	Await(ctx context.Context, req confirmation.Request) (confirmation.Response, error)
}

// outputContainer bounds tool output. containment.Pipeline implements it.
type outputContainer interface {
	Contain(ctx context.Context, output, sessionID string) (containment.Artifact, error)
}
