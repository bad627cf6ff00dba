// Package policy classifies proposed tool calls as allowed, denied or
// needing user approval.
package policy

import (
	"cmp"
	"io"
	"log/slog"
	"slices"
	"sync"
)

// Config holds the initial engine state.
type Config struct {
	Rules []Rule
	// DefaultDecision applies when no rule matches. Empty means AskUser.
	DefaultDecision Decision
	// NonInteractive downgrades AskUser to Deny because no approver can be consulted.
	NonInteractive bool
	Logger         *slog.Logger
}

// Result is a decision together with the rule that produced it.
// Rule is nil when the default decision was used.
type Result struct {
	Decision Decision
	Rule     *Rule
}

// Engine evaluates tool calls against a priority-ordered rule list.
// Check is safe for concurrent use. Rule mutations are expected to come
// from a single owner.
type Engine struct {
	mu              sync.RWMutex
	rules           []compiledRule
	defaultDecision Decision
	nonInteractive  bool
	logger          *slog.Logger
}

// NewEngine builds an engine from cfg, compiling every rule.
func NewEngine(cfg Config) (*Engine, error) {
	def := cfg.DefaultDecision
	if def == "" {
		def = AskUser
	}
	if !def.Valid() {
		return nil, &InvalidDecisionError{Value: string(def)}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine{
		defaultDecision: def,
		nonInteractive:  cfg.NonInteractive,
		logger:          logger,
	}
	if err := e.SetRules(cfg.Rules); err != nil {
		return nil, err
	}
	return e, nil
}

// Check returns the decision for call.
func (e *Engine) Check(call Call) Decision {
	return e.Evaluate(call).Decision
}

// Evaluate returns the decision for call and the rule that matched, if any.
func (e *Engine) Evaluate(call Call) Result {
	canonical, hasArgs := canonicalArgs(call.Args)

	e.mu.RLock()
	defer e.mu.RUnlock()

	res := Result{Decision: e.defaultDecision}
	for i := range e.rules {
		if e.rules[i].matches(call.Name, canonical, hasArgs) {
			r := e.rules[i].Rule
			res = Result{Decision: r.Decision, Rule: &r}
			break
		}
	}

	if e.nonInteractive && res.Decision == AskUser {
		res.Decision = Deny
	}

	e.logger.Debug("policy evaluated",
		"tool", call.Name,
		"decision", res.Decision,
		"matched_rule", res.Rule != nil,
	)
	return res
}

// AddRule appends rule and re-sorts. Equal priorities keep insertion order.
func (e *Engine) AddRule(rule Rule) error {
	c, err := compileRule(rule)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, c)
	sortRules(e.rules)
	return nil
}

// RemoveRulesForTool deletes every rule whose ToolName equals name exactly
// and returns how many were removed. Wildcard rules only go if their pattern
// is literally name.
func (e *Engine) RemoveRulesForTool(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	before := len(e.rules)
	e.rules = slices.DeleteFunc(e.rules, func(c compiledRule) bool {
		return c.ToolName == name
	})
	return before - len(e.rules)
}

// SetRules replaces the whole rule list. On error the existing rules are kept.
func (e *Engine) SetRules(rules []Rule) error {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		c, err := compileRule(r)
		if err != nil {
			return err
		}
		compiled = append(compiled, c)
	}
	sortRules(compiled)

	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	return nil
}

// Rules returns a copy of the rules in evaluation order.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	for i, c := range e.rules {
		out[i] = c.Rule
	}
	return out
}

// NonInteractive reports whether AskUser decisions are being downgraded.
func (e *Engine) NonInteractive() bool {
	return e.nonInteractive
}

// sortRules orders by priority descending. The sort must be stable: ties are
// broken by insertion order.
func sortRules(rules []compiledRule) {
	slices.SortStableFunc(rules, func(a, b compiledRule) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
}
