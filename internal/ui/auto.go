// Package ui holds the terminal approvers and the status printer.
package ui

import (
	"log/slog"

	"github.com/Cyclone1070/toolgate/internal/confirmation"
)

// AutoApprover approves every request it sees.
type AutoApprover struct {
	bus    requestBus
	logger *slog.Logger
	sub    confirmation.Subscription
}

// NewAutoApprover subscribes to bus and approves every request until Stop.
// logger may be nil.
func NewAutoApprover(bus requestBus, logger *slog.Logger) *AutoApprover {
	if bus == nil {
		panic("bus is required")
	}
	a := &AutoApprover{bus: bus, logger: logger}
	a.sub = bus.SubscribeRequests(a.handle)
	return a
}

func (a *AutoApprover) handle(req confirmation.Request) {
	if a.logger != nil {
		a.logger.Info("auto-approving tool call", "tool", req.ToolName, "call", req.CallID)
	}
	// Publishing a response never fails.
	_ = a.bus.Publish(confirmation.Approve(req))
}

// Stop unsubscribes from the bus.
func (a *AutoApprover) Stop() {
	a.bus.Unsubscribe(a.sub)
}
