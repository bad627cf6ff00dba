package policy

import "strings"

// Decision is the outcome of evaluating a tool call against the rule set.
type Decision string

const (
	Allow   Decision = "allow"
	Deny    Decision = "deny"
	AskUser Decision = "ask_user"
)

// ParseDecision converts a config value into a Decision.
// Accepts "allow", "deny", "ask_user" and "ask" in any case.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow":
		return Allow, nil
	case "deny":
		return Deny, nil
	case "ask_user", "ask":
		return AskUser, nil
	default:
		return "", &InvalidDecisionError{Value: s}
	}
}

// Valid reports whether d is one of the known decisions.
func (d Decision) Valid() bool {
	return d == Allow || d == Deny || d == AskUser
}
