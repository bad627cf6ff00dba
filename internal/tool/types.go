package tool

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
}

// Declaration declares a tool's function signature for the LLM.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// ToolDisplay is implemented by all display types returned from tools.
// The UI uses type switches to render each type appropriately.
type ToolDisplay interface {
	isToolDisplay()
}

// StringDisplay is for simple text output (most tools).
type StringDisplay string

func (StringDisplay) isToolDisplay() {}

// ShellDisplay summarizes a finished shell command.
type ShellDisplay struct {
	Command    string
	WorkingDir string
	ExitCode   int
	Truncated  bool
}

func (ShellDisplay) isToolDisplay() {}

// Min is a helper for Schema.Minimum.
func Min(v float64) *float64 {
	return &v
}
