package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/Cyclone1070/toolgate/internal/provider"
	"github.com/Cyclone1070/toolgate/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestProvider_Generate(t *testing.T) {
	var gotModel string
	var gotConfig *genai.GenerateContentConfig
	client := &MockClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel = model
			gotConfig = config
			require.Len(t, contents, 1)
			return respond(&genai.Part{Text: "done"}), nil
		},
	}

	p := NewProvider(client, "gemini-test", "be brief", nil)
	msg, err := p.Generate(context.Background(),
		[]provider.Message{{Role: provider.RoleUser, Content: "hi"}},
		[]tool.Declaration{{Name: "read_file", Parameters: &tool.Schema{Type: tool.TypeObject}}},
	)

	require.NoError(t, err)
	assert.Equal(t, "done", msg.Content)
	assert.Equal(t, "gemini-test", gotModel)
	require.NotNil(t, gotConfig.SystemInstruction)
	assert.Equal(t, "be brief", gotConfig.SystemInstruction.Parts[0].Text)
	require.Len(t, gotConfig.Tools, 1)
}

func TestProvider_Generate_MapsErrors(t *testing.T) {
	client := &MockClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, &genai.APIError{Code: 429}
		},
	}

	_, err := NewProvider(client, "m", "", nil).Generate(context.Background(), []provider.Message{{Role: provider.RoleUser, Content: "hi"}}, nil)

	assert.True(t, provider.IsRetryable(err))
}

func TestProvider_Generate_Cancelled(t *testing.T) {
	client := &MockClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("request aborted")
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider(client, "m", "", nil).Generate(ctx, []provider.Message{{Role: provider.RoleUser, Content: "hi"}}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestProvider_Generate_BadHistory(t *testing.T) {
	_, err := NewProvider(&MockClient{}, "m", "", nil).Generate(context.Background(), []provider.Message{{Role: "narrator"}}, nil)

	var perr *provider.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.ErrorCodeInvalidRequest, perr.Code)
}

func TestSummarizer_Summarize(t *testing.T) {
	var gotConfig *genai.GenerateContentConfig
	client := &MockClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotConfig = config
			assert.Equal(t, "huge output", contents[0].Parts[0].Text)
			return respond(&genai.Part{Text: "  short summary \n"}), nil
		},
	}

	summary, err := NewSummarizer(client, "flash").Summarize(context.Background(), "huge output", 128)

	require.NoError(t, err)
	assert.Equal(t, "short summary", summary)
	assert.Equal(t, int32(128), gotConfig.MaxOutputTokens)
	assert.NotNil(t, gotConfig.SystemInstruction)
}

func TestSummarizer_TruncatedSummaryKept(t *testing.T) {
	client := &MockClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content:      &genai.Content{Parts: []*genai.Part{{Text: "cut"}}},
				FinishReason: genai.FinishReasonMaxTokens,
			}}}, nil
		},
	}

	summary, err := NewSummarizer(client, "flash").Summarize(context.Background(), "x", 1)

	require.NoError(t, err)
	assert.Equal(t, "cut", summary)
}

func TestSummarizer_Failures(t *testing.T) {
	empty := &MockClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return respond(), nil
		},
	}
	_, err := NewSummarizer(empty, "flash").Summarize(context.Background(), "x", 0)
	assert.Error(t, err)

	failing := &MockClient{
		GenerateContentFunc: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, &genai.APIError{Code: 500}
		},
	}
	_, err = NewSummarizer(failing, "flash").Summarize(context.Background(), "x", 0)
	var perr *provider.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.ErrorCodeUnavailable, perr.Code)
}

func TestConstructors_PanicOnMissingDeps(t *testing.T) {
	assert.Panics(t, func() { NewProvider(nil, "m", "", nil) })
	assert.Panics(t, func() { NewProvider(&MockClient{}, "", "", nil) })
	assert.Panics(t, func() { NewSummarizer(nil, "m") })
}
