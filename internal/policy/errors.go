package policy

import "fmt"

// InvalidDecisionError is returned when a decision string is not recognised.
type InvalidDecisionError struct {
	Value string
}

func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("invalid policy decision %q (want allow, deny or ask_user)", e.Value)
}

// InvalidPatternError is returned when a rule's argument pattern does not compile.
type InvalidPatternError struct {
	Pattern string
	Cause   error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid args pattern %q: %v", e.Pattern, e.Cause)
}
func (e *InvalidPatternError) Unwrap() error { return e.Cause }

// RulesFileError is returned when a rules file cannot be read or parsed.
type RulesFileError struct {
	Path  string
	Cause error
}

func (e *RulesFileError) Error() string {
	return fmt.Sprintf("failed to load policy rules from %s: %v", e.Path, e.Cause)
}
func (e *RulesFileError) Unwrap() error { return e.Cause }
