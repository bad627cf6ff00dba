package gemini

import (
	"context"
	"io"
	"log/slog"

	"github.com/Cyclone1070/toolgate/internal/provider"
	"github.com/Cyclone1070/toolgate/internal/tool"
	"google.golang.org/genai"
)

// Provider generates assistant turns with a Gemini model.
type Provider struct {
	client            Client
	model             string
	systemInstruction string
	logger            *slog.Logger
}

// NewProvider creates a Provider for model. logger may be nil.
func NewProvider(client Client, model, systemInstruction string, logger *slog.Logger) *Provider {
	if client == nil {
		panic("client is required")
	}
	if model == "" {
		panic("model is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{
		client:            client,
		model:             model,
		systemInstruction: systemInstruction,
		logger:            logger,
	}
}

// Generate sends the conversation and tool declarations and returns the
// model's next turn.
func (p *Provider) Generate(ctx context.Context, messages []provider.Message, tools []tool.Declaration) (*provider.Message, error) {
	contents, err := toContents(messages)
	if err != nil {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeInvalidRequest, Message: "convert messages", Underlying: err}
	}

	config := &genai.GenerateContentConfig{Tools: toTools(tools)}
	if p.systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(p.systemInstruction, roleUser)
	}

	p.logger.Debug("generating", "model", p.model, "messages", len(messages), "tools", len(tools))
	resp, err := p.client.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mapError(err)
	}
	return fromResponse(resp)
}
