package gemini

import (
	"context"
	"strings"

	"github.com/Cyclone1070/toolgate/internal/provider"
	"google.golang.org/genai"
)

const summaryInstruction = "Summarize the following tool output for a coding agent. " +
	"Keep file paths, error messages, exit codes and counts. Do not add commentary."

// Summarizer condenses oversized tool output with a Gemini model.
type Summarizer struct {
	client Client
	model  string
}

// NewSummarizer creates a Summarizer for model.
func NewSummarizer(client Client, model string) *Summarizer {
	if client == nil {
		panic("client is required")
	}
	if model == "" {
		panic("model is required")
	}
	return &Summarizer{client: client, model: model}
}

// Summarize returns a summary of text capped at maxTokens output tokens.
// A maxTokens of zero leaves the cap to the model.
func (s *Summarizer) Summarize(ctx context.Context, text string, maxTokens int) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(summaryInstruction, roleUser),
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(text, roleUser)}
	resp, err := s.client.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", mapError(err)
	}

	msg, err := fromResponse(resp)
	if err != nil && msg == nil {
		return "", err
	}
	// A summary cut short by the token cap is still usable.
	summary := strings.TrimSpace(msg.Content)
	if summary == "" {
		return "", &provider.ProviderError{Code: provider.ErrorCodeEmptyResponse, Message: "empty summary"}
	}
	return summary, nil
}
