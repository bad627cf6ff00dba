package config

import "github.com/Cyclone1070/toolgate/internal/policy"

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile,
// then via TOOLGATE_* environment variables.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Tools       ToolsConfig       `json:"tools"`
	Policy      PolicyConfig      `json:"policy"`
	Containment ContainmentConfig `json:"containment"`
	Model       ModelConfig       `json:"model"`
	UI          UIConfig          `json:"ui"`
}

type ToolsConfig struct {
	// File Operations
	MaxFileSize int64 `json:"max_file_size"` // Default: 20 * 1024 * 1024 (20MB)

	// Directory Listing
	DefaultListDirectoryLimit int `json:"default_list_directory_limit"` // Default: 1000
	MaxListDirectoryLimit     int `json:"max_list_directory_limit"`     // Default: 10000
	MaxListDirectoryResults   int `json:"max_list_directory_results"`   // Default: 50000

	// Command Execution
	MaxCommandOutputSize    int64 `json:"max_command_output_size"`    // Default: 10 * 1024 * 1024 (10MB)
	DefaultShellTimeout     int   `json:"default_shell_timeout"`      // Default: 600 (10 minutes, in seconds)
	ShellGracefulShutdownMs int   `json:"shell_graceful_shutdown_ms"` // Default: 2000

	// Scheduling
	MaxParallelCalls int `json:"max_parallel_calls"` // Default: 4
}

type PolicyConfig struct {
	DefaultDecision policy.Decision `json:"default_decision"` // Default: ask_user
	NonInteractive  bool            `json:"non_interactive"`
	RulesFile       string          `json:"rules_file,omitempty"` // YAML, merged after inline rules
	Rules           []policy.Rule   `json:"rules"`
}

type ContainmentConfig struct {
	ThresholdChars   int    `json:"threshold_chars"`    // Default: 2000
	SummaryMaxTokens int    `json:"summary_max_tokens"` // Default: 512
	ArtifactDir      string `json:"artifact_dir"`       // Empty means <user cache dir>/toolgate/artifacts
}

type ModelConfig struct {
	Name          string `json:"name"`           // Default: gemini-2.5-flash
	SummaryModel  string `json:"summary_model"`  // Empty means Name
	MaxIterations int    `json:"max_iterations"` // Default: 20
}

type UIConfig struct {
	ColorPrimary string `json:"color_primary"` // Default: "63"
	ColorSuccess string `json:"color_success"` // Default: "42"
	ColorError   string `json:"color_error"`   // Default: "196"
	ColorMuted   string `json:"color_muted"`   // Default: "241"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			MaxFileSize:               20 * 1024 * 1024,
			DefaultListDirectoryLimit: 1000,
			MaxListDirectoryLimit:     10000,
			MaxListDirectoryResults:   50000,
			MaxCommandOutputSize:      10 * 1024 * 1024,
			DefaultShellTimeout:       600,
			ShellGracefulShutdownMs:   2000,
			MaxParallelCalls:          4,
		},
		Policy: PolicyConfig{
			DefaultDecision: policy.AskUser,
			Rules: []policy.Rule{
				{ToolName: "read_file", Decision: policy.Allow},
				{ToolName: "list_directory", Decision: policy.Allow},
			},
		},
		Containment: ContainmentConfig{
			ThresholdChars:   2000,
			SummaryMaxTokens: 512,
		},
		Model: ModelConfig{
			Name:          "gemini-2.5-flash",
			MaxIterations: 20,
		},
		UI: UIConfig{
			ColorPrimary: "63",
			ColorSuccess: "42",
			ColorError:   "196",
			ColorMuted:   "241",
		},
	}
}
