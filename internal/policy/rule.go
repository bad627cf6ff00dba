package policy

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// wildcardSuffix marks a server-scoped tool pattern such as "jira__*".
const wildcardSuffix = "__*"

// Rule maps a tool call to a decision.
// An empty ToolName matches every tool. ArgsPattern is a regular expression
// matched against the canonical (key-sorted) JSON encoding of the arguments.
type Rule struct {
	ToolName    string   `json:"tool_name,omitempty" yaml:"tool_name"`
	ArgsPattern string   `json:"args_pattern,omitempty" yaml:"args_pattern"`
	Decision    Decision `json:"decision" yaml:"decision"`
	Priority    int      `json:"priority,omitempty" yaml:"priority"`
}

// Call is the part of a tool call the engine looks at.
type Call struct {
	Name string
	Args json.RawMessage
}

type compiledRule struct {
	Rule
	args *regexp.Regexp
}

func compileRule(r Rule) (compiledRule, error) {
	if !r.Decision.Valid() {
		return compiledRule{}, &InvalidDecisionError{Value: string(r.Decision)}
	}
	c := compiledRule{Rule: r}
	if r.ArgsPattern != "" {
		re, err := regexp.Compile(r.ArgsPattern)
		if err != nil {
			return compiledRule{}, &InvalidPatternError{Pattern: r.ArgsPattern, Cause: err}
		}
		c.args = re
	}
	return c, nil
}

// matches evaluates both tests. canonical is empty when the call has no arguments.
func (c compiledRule) matches(name, canonical string, hasArgs bool) bool {
	if !matchToolName(c.ToolName, name) {
		return false
	}
	if c.args == nil {
		return true
	}
	if !hasArgs {
		return false
	}
	return c.args.MatchString(canonical)
}

// matchToolName matches exactly, or by "<server>__" prefix for patterns ending in "__*".
// The separator is part of the prefix so "jira__*" never matches "jira2__x".
func matchToolName(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	if strings.HasSuffix(pattern, wildcardSuffix) {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(name, prefix)
	}
	return pattern == name
}

// canonicalArgs returns a deterministic encoding of args with object keys sorted.
// Calls with no payload (absent or JSON null) report hasArgs=false.
func canonicalArgs(args json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		// Not JSON; fall back to the raw text so patterns still have something to match.
		return string(trimmed), true
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return string(trimmed), true
	}
	return strings.TrimSuffix(buf.String(), "\n"), true
}
