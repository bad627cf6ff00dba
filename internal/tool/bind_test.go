package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetInput struct {
	Name  string            `json:"name"`
	Times *int              `json:"times,omitempty"`
	Tags  []string          `json:"tags,omitempty"`
	Env   map[string]string `json:"env,omitempty"`
}

func (g *greetInput) Validate() error {
	if g.Name == "nobody" {
		return errors.New("nobody cannot be greeted")
	}
	return nil
}

func (g *greetInput) String() string {
	return "Greeting " + g.Name
}

type greetTool struct {
	executed int
}

func (t *greetTool) Name() string { return "greet" }

func (t *greetTool) Declaration() Declaration {
	return Declaration{
		Name:        "greet",
		Description: "Greets someone",
		Parameters: &Schema{
			Type: TypeObject,
			Properties: map[string]*Schema{
				"name":  {Type: TypeString},
				"times": {Type: TypeInteger, Minimum: Min(1)},
				"tags":  {Type: TypeArray, Items: &Schema{Type: TypeString}},
				"env":   {Type: TypeObject},
			},
			Required: []string{"name"},
		},
	}
}

func (t *greetTool) Input() any { return &greetInput{} }

func (t *greetTool) Execute(ctx context.Context, input any) (Result, error) {
	in, ok := input.(*greetInput)
	if !ok {
		return nil, InputTypeError(t.Name(), input)
	}
	t.executed++
	return TextResult{Content: fmt.Sprintf("hello %s", in.Name)}, nil
}

type bareTool struct{}

func (bareTool) Name() string { return "bare" }
func (bareTool) Declaration() Declaration { return Declaration{Name: "bare"} }
func (bareTool) Input() any { return &struct{}{} }
func (bareTool) Execute(context.Context, any) (Result, error) {
	return TextResult{Content: "ok"}, nil
}

func TestBind_DecodesTypedInput(t *testing.T) {
	inv, err := Bind(&greetTool{}, json.RawMessage(`{"name":"ada","times":3,"tags":["x","y"],"env":{"A":"1"}}`))

	require.NoError(t, err)
	in := inv.Input.(*greetInput)
	assert.Equal(t, "ada", in.Name)
	require.NotNil(t, in.Times)
	assert.Equal(t, 3, *in.Times)
	assert.Equal(t, []string{"x", "y"}, in.Tags)
	assert.Equal(t, map[string]string{"A": "1"}, in.Env)
	assert.Equal(t, "Greeting ada", inv.Description)
}

func TestBind_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{"missing required", `{}`},
		{"wrong type", `{"name":42}`},
		{"below minimum", `{"name":"ada","times":0}`},
		{"not an object", `[1,2]`},
		{"malformed", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(&greetTool{}, json.RawMessage(tt.args))

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "greet", vErr.Tool)
		})
	}
}

func TestBind_InputValidateRuns(t *testing.T) {
	_, err := Bind(&greetTool{}, json.RawMessage(`{"name":"nobody"}`))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "nobody cannot be greeted")
}

func TestBind_NoSchemaAcceptsEmptyArgs(t *testing.T) {
	inv, err := Bind(bareTool{}, nil)

	require.NoError(t, err)
	assert.Equal(t, "bare", inv.Description)

	res, err := inv.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", res.LLMContent())
}

func TestInvocation_Run(t *testing.T) {
	tool := &greetTool{}
	inv, err := Bind(tool, json.RawMessage(`{"name":"bob"}`))
	require.NoError(t, err)

	res, err := inv.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "hello bob", res.LLMContent())
	assert.Equal(t, StringDisplay("hello bob"), res.Display())
	assert.Equal(t, 1, tool.executed)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(&greetTool{}, bareTool{})

	assert.Equal(t, []string{"bare", "greet"}, r.Names())

	decls := r.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, "bare", decls[0].Name)
	assert.Equal(t, "greet", decls[1].Name)

	_, ok := r.Lookup("greet")
	assert.True(t, ok)
	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	msg := r.UnknownToolMessage("missing")
	assert.Contains(t, msg, `tool "missing" does not exist`)
	assert.Contains(t, msg, `"name": "greet"`)
}

func TestTextResult_Summary(t *testing.T) {
	r := TextResult{Content: "long content", Summary: "short"}
	assert.Equal(t, StringDisplay("short"), r.Display())
	assert.Equal(t, "long content", r.LLMContent())
}
