// Package provider defines the conversation types exchanged with a model.
package provider

import "encoding/json"

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// FunctionCall is the function part of a tool call.
type FunctionCall struct {
	Name      string
	Arguments json.RawMessage
}

// ToolCall is one call requested by the model.
type ToolCall struct {
	ID       string
	Function FunctionCall
}

// Message is one turn of the conversation.
// Tool messages carry ToolCallID and ToolName to pair them with the call.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}
