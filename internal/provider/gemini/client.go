// Package gemini adapts the Gemini API to the provider types.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Client is the part of the Gemini SDK the provider uses.
type Client interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// RealClient wraps the official SDK client to satisfy Client.
type RealClient struct {
	client *genai.Client
}

// NewClient creates an SDK client for the Gemini API. An empty apiKey lets
// the SDK read GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func NewClient(ctx context.Context, apiKey string) (*RealClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &RealClient{client: client}, nil
}

// GenerateContent calls the SDK's GenerateContent method.
func (c *RealClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}
