package ui

import (
	"github.com/Cyclone1070/toolgate/internal/confirmation"
	"github.com/Cyclone1070/toolgate/internal/policy"
)

// requestBus is the approver side of the confirmation bus.
type requestBus interface {
	SubscribeRequests(fn func(confirmation.Request)) confirmation.Subscription
	Unsubscribe(sub confirmation.Subscription)
	Publish(msg confirmation.Message) error
}

// ruleAdder accepts session rules. policy.Engine implements it.
type ruleAdder interface {
	AddRule(rule policy.Rule) error
}
