package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/toolgate/internal/provider"
	"github.com/Cyclone1070/toolgate/internal/tool"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// toContents converts the conversation to Gemini contents. Consecutive tool
// messages are merged into one turn, as the API expects every response to a
// batch of calls together.
func toContents(messages []provider.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case provider.RoleUser:
			if msg.Content == "" {
				continue
			}
			contents = append(contents, genai.NewContentFromText(msg.Content, roleUser))

		case provider.RoleAssistant:
			parts := make([]*genai.Part, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				args, err := decodeArgs(tc.Function.Arguments)
				if err != nil {
					return nil, fmt.Errorf("tool call %s: %w", tc.ID, err)
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Function.Name, Args: args},
				})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: roleModel, Parts: parts})

		case provider.RoleTool:
			part := &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolCallID,
					Name:     msg.ToolName,
					Response: map[string]any{"output": msg.Content},
				},
			}
			if last := lastContent(contents); last != nil && isFunctionResponses(last) {
				last.Parts = append(last.Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: roleUser, Parts: []*genai.Part{part}})

		default:
			return nil, fmt.Errorf("unknown message role %q", msg.Role)
		}
	}

	return contents, nil
}

func lastContent(contents []*genai.Content) *genai.Content {
	if len(contents) == 0 {
		return nil
	}
	return contents[len(contents)-1]
}

func isFunctionResponses(c *genai.Content) bool {
	if c.Role != roleUser || len(c.Parts) == 0 {
		return false
	}
	for _, p := range c.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return true
}

func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// toTools converts tool declarations to Gemini function declarations.
func toTools(decls []tool.Declaration) []*genai.Tool {
	if len(decls) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		functionDeclarations = append(functionDeclarations, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  toSchema(d.Parameters),
		})
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toSchema converts a tool schema, recursing into properties and items.
func toSchema(s *tool.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
		Minimum:     s.Minimum,
		Items:       toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}

func toType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromResponse converts the first candidate to an assistant message. Calls
// without an ID from the API get a generated one so results can be paired.
func fromResponse(resp *genai.GenerateContentResponse) (*provider.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeEmptyResponse, Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist:
		return nil, &provider.ProviderError{Code: provider.ErrorCodeContentBlocked, Message: "content blocked by safety filters"}
	}

	msg := &provider.Message{Role: provider.RoleAssistant}
	if candidate.Content == nil {
		return msg, nil
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			raw, err := json.Marshal(args)
			if err != nil {
				return nil, fmt.Errorf("encode arguments for %s: %w", part.FunctionCall.Name, err)
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			msg.ToolCalls = append(msg.ToolCalls, provider.ToolCall{
				ID:       id,
				Function: provider.FunctionCall{Name: part.FunctionCall.Name, Arguments: raw},
			})
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	msg.Content = text.String()

	if candidate.FinishReason == genai.FinishReasonMaxTokens && len(msg.ToolCalls) == 0 {
		return msg, &provider.ProviderError{Code: provider.ErrorCodeContextLength, Message: "response truncated due to max tokens"}
	}
	return msg, nil
}

// mapError maps Gemini API errors to provider errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	code, message, ok := apiErrorDetails(err)
	if !ok {
		return &provider.ProviderError{Code: provider.ErrorCodeNetwork, Message: "network error", Underlying: err, Retryable: true}
	}

	switch code {
	case 401, 403:
		return &provider.ProviderError{Code: provider.ErrorCodeAuth, Message: "authentication failed", Underlying: err}
	case 429:
		return &provider.ProviderError{Code: provider.ErrorCodeRateLimit, Message: "rate limit exceeded", Underlying: err, Retryable: true}
	case 400:
		return &provider.ProviderError{Code: provider.ErrorCodeInvalidRequest, Message: "invalid request: " + message, Underlying: err}
	case 500, 502, 503, 504:
		return &provider.ProviderError{Code: provider.ErrorCodeUnavailable, Message: "service unavailable", Underlying: err, Retryable: true}
	default:
		return &provider.ProviderError{Code: provider.ErrorCodeNetwork, Message: "API error: " + message, Underlying: err, Retryable: true}
	}
}

// apiErrorDetails accepts the SDK error by value or by pointer.
func apiErrorDetails(err error) (int, string, bool) {
	var byValue genai.APIError
	if errors.As(err, &byValue) {
		return byValue.Code, byValue.Message, true
	}
	var byPointer *genai.APIError
	if errors.As(err, &byPointer) && byPointer != nil {
		return byPointer.Code, byPointer.Message, true
	}
	return 0, "", false
}
