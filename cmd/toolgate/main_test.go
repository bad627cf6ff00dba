package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Cyclone1070/toolgate/internal/provider/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// scriptedClient answers GenerateContent calls from a script. Calls made
// with a system instruction other than the agent's are summarization calls.
type scriptedClient struct {
	mu    sync.Mutex
	turns []*genai.GenerateContentResponse
	seen  [][]*genai.Content
}

func (c *scriptedClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, contents)
	if len(c.turns) == 0 {
		return modelTurn(&genai.Part{Text: "Nothing left to do."}), nil
	}
	next := c.turns[0]
	c.turns = c.turns[1:]
	return next, nil
}

func modelTurn(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: parts},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func callPart(id, name string, args map[string]any) *genai.Part {
	return &genai.Part{FunctionCall: &genai.FunctionCall{ID: id, Name: name, Args: args}}
}

type harness struct {
	opts      *options
	client    *scriptedClient
	out       bytes.Buffer
	errOut    bytes.Buffer
	workspace string
}

func newHarness(t *testing.T, turns ...*genai.GenerateContentResponse) *harness {
	t.Helper()
	dir := t.TempDir()
	workspace := filepath.Join(dir, "ws")
	require.NoError(t, os.MkdirAll(workspace, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "hello.txt"), []byte("hello"), 0o644))

	configPath := filepath.Join(dir, "config.json")
	cfg := `{"containment": {"artifact_dir": "` + filepath.Join(dir, "artifacts") + `"}}`
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))

	return &harness{
		opts: &options{
			configPath:     configPath,
			logLevel:       "error",
			workspace:      workspace,
			sessionSummary: filepath.Join(dir, "out", "summary.json"),
		},
		client:    &scriptedClient{turns: turns},
		workspace: workspace,
	}
}

func (h *harness) run(ctx context.Context, in string) error {
	deps := dependencies{newClient: func(context.Context) (gemini.Client, error) { return h.client, nil }}
	return run(ctx, h.opts, deps, streams{in: strings.NewReader(in), out: &h.out, err: &h.errOut})
}

func (h *harness) summary(t *testing.T) map[string]any {
	t.Helper()
	data, err := os.ReadFile(h.opts.sessionSummary)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc["sessionMetrics"].(map[string]any)["tools"].(map[string]any)
}

func byName(tools map[string]any, name string) map[string]any {
	return tools["byName"].(map[string]any)[name].(map[string]any)
}

func TestRun_HeadlessDeniesWhatNeedsApproval(t *testing.T) {
	h := newHarness(t,
		modelTurn(
			callPart("c1", "list_directory", map[string]any{"path": "."}),
			callPart("c2", "write_file", map[string]any{"path": "new.txt", "content": "x"}),
		),
		modelTurn(&genai.Part{Text: "Listed the workspace."}),
	)
	h.opts.prompt = "look around"

	err := h.run(context.Background(), "")

	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Listed the workspace.")
	assert.NoFileExists(t, filepath.Join(h.workspace, "new.txt"))

	tools := h.summary(t)
	assert.EqualValues(t, 2, tools["totalCalls"])
	assert.EqualValues(t, 1, byName(tools, "list_directory")["success"])
	assert.EqualValues(t, 1, byName(tools, "write_file")["fail"])
	decisions := tools["totalDecisions"].(map[string]any)
	assert.EqualValues(t, 1, decisions["auto_accept"])
	assert.EqualValues(t, 1, decisions["reject"])

	// The second model turn sees both results, the denied one included.
	require.Len(t, h.client.seen, 2)
	last := h.client.seen[1]
	responses := last[len(last)-1].Parts
	require.Len(t, responses, 2)
	assert.Contains(t, responses[0].FunctionResponse.Response["output"], "hello.txt")
	assert.Contains(t, responses[1].FunctionResponse.Response["output"], "Tool call denied")
}

func TestRun_YoloApprovesWrites(t *testing.T) {
	h := newHarness(t,
		modelTurn(callPart("c1", "write_file", map[string]any{"path": "new.txt", "content": "made"})),
		modelTurn(&genai.Part{Text: "Wrote it."}),
	)
	h.opts.prompt = "write a file"
	h.opts.yolo = true

	require.NoError(t, h.run(context.Background(), ""))

	data, err := os.ReadFile(filepath.Join(h.workspace, "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "made", string(data))

	decisions := h.summary(t)["totalDecisions"].(map[string]any)
	assert.EqualValues(t, 1, decisions["accept"])
}

func TestRun_UnknownToolReportedToModel(t *testing.T) {
	h := newHarness(t,
		modelTurn(callPart("c1", "teleport", nil)),
		modelTurn(&genai.Part{Text: "Sorry."}),
	)
	h.opts.prompt = "go"

	require.NoError(t, h.run(context.Background(), ""))

	assert.Contains(t, h.out.String(), "teleport is not a known tool")
	last := h.client.seen[1]
	output := last[len(last)-1].Parts[0].FunctionResponse.Response["output"].(string)
	assert.Contains(t, output, `tool "teleport" does not exist`)
	assert.EqualValues(t, 0, h.summary(t)["totalCalls"])
}

func TestRun_REPLRunsEachLine(t *testing.T) {
	h := newHarness(t,
		modelTurn(&genai.Part{Text: "first answer"}),
		modelTurn(&genai.Part{Text: "second answer"}),
	)
	h.opts.sessionSummary = ""

	require.NoError(t, h.run(context.Background(), "one\n\ntwo\nexit\nthree\n"))

	out := h.out.String()
	assert.Contains(t, out, "first answer")
	assert.Contains(t, out, "second answer")
	assert.Len(t, h.client.seen, 2)
}

func TestRun_InvalidLogLevel(t *testing.T) {
	h := newHarness(t)
	h.opts.logLevel = "loud"

	err := h.run(context.Background(), "")

	assert.ErrorContains(t, err, "invalid --log-level")
}

func TestRun_MissingConfigFile(t *testing.T) {
	h := newHarness(t)
	h.opts.configPath = filepath.Join(t.TempDir(), "absent.json")

	err := h.run(context.Background(), "")

	assert.ErrorContains(t, err, "failed to load config")
}

func TestRun_BadRulesFile(t *testing.T) {
	h := newHarness(t)
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("rules:\n  - tool_name: x\n    decision: maybe\n"), 0o644))
	t.Setenv("TOOLGATE_RULES_FILE", rules)

	err := h.run(context.Background(), "")

	assert.Error(t, err)
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd(defaultDependencies())

	for _, name := range []string{"prompt", "yolo", "session-summary", "config", "log-level", "workspace"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "p", cmd.Flags().Lookup("prompt").Shorthand)

	cmd.SetArgs([]string{"unexpected"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
