package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/toolgate/internal/policy"
	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "toolgate"
	// ConfigFile is the config file name
	ConfigFile = "config.json"
	// EnvPrefix prefixes every environment override, e.g. TOOLGATE_MODEL.
	EnvPrefix = "TOOLGATE"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// envOverrides lists the settings that can be changed from the environment.
// Unset variables leave the file or default value alone.
type envOverrides struct {
	Model            string `envconfig:"MODEL"`
	SummaryModel     string `envconfig:"SUMMARY_MODEL"`
	DefaultDecision  string `envconfig:"DEFAULT_DECISION"`
	NonInteractive   *bool  `envconfig:"NON_INTERACTIVE"`
	RulesFile        string `envconfig:"RULES_FILE"`
	ArtifactDir      string `envconfig:"ARTIFACT_DIR"`
	ThresholdChars   int    `envconfig:"THRESHOLD_CHARS"`
	MaxParallelCalls int    `envconfig:"MAX_PARALLEL_CALLS"`
	MaxIterations    int    `envconfig:"MAX_ITERATIONS"`
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing)
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads configuration from ~/.config/toolgate/config.json, merges it
// with defaults and applies environment overrides. Dotfile values override
// defaults. Returns default config if dotfile doesn't exist.
// Returns error only for parse errors, permission issues, or validation failures.
//
// NOTE: This implementation unmarshals JSON keys directly over the default configuration.
// This allows explicit zero values (e.g., 0, false, "") in the config file to override defaults.
func (l *Loader) Load() (*Config, error) {
	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		return l.finish(DefaultConfig()) // Use defaults if can't get home dir
	}
	return l.load(filepath.Join(homeDir, ".config", ConfigDir, ConfigFile), true)
}

// LoadFile is Load with an explicit config path. A missing file is an error.
func (l *Loader) LoadFile(path string) (*Config, error) {
	return l.load(path, false)
}

func (l *Loader) load(configPath string, optional bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := l.fs.ReadFile(configPath)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return l.finish(cfg) // Use defaults if file doesn't exist
		}
		return nil, err // Return error for permission issues
	}

	// Parse JSON directly into the default config struct.
	// This ensures that present keys overwrite defaults (even if zero),
	// while missing keys leave the defaults untouched.
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return l.finish(cfg)
}

func (l *Loader) finish(cfg *Config) (*Config, error) {
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	normalizeDecisions(cfg)

	// Validate the merged configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}

	if env.Model != "" {
		cfg.Model.Name = env.Model
	}
	if env.SummaryModel != "" {
		cfg.Model.SummaryModel = env.SummaryModel
	}
	if env.DefaultDecision != "" {
		cfg.Policy.DefaultDecision = policy.Decision(env.DefaultDecision)
	}
	if env.NonInteractive != nil {
		cfg.Policy.NonInteractive = *env.NonInteractive
	}
	if env.RulesFile != "" {
		cfg.Policy.RulesFile = env.RulesFile
	}
	if env.ArtifactDir != "" {
		cfg.Containment.ArtifactDir = env.ArtifactDir
	}
	if env.ThresholdChars != 0 {
		cfg.Containment.ThresholdChars = env.ThresholdChars
	}
	if env.MaxParallelCalls != 0 {
		cfg.Tools.MaxParallelCalls = env.MaxParallelCalls
	}
	if env.MaxIterations != 0 {
		cfg.Model.MaxIterations = env.MaxIterations
	}
	return nil
}

// normalizeDecisions accepts the spellings ParseDecision does ("ASK", "Allow").
// Unrecognised values are left for Validate to report.
func normalizeDecisions(cfg *Config) {
	if d, err := policy.ParseDecision(string(cfg.Policy.DefaultDecision)); err == nil {
		cfg.Policy.DefaultDecision = d
	}
	for i := range cfg.Policy.Rules {
		if d, err := policy.ParseDecision(string(cfg.Policy.Rules[i].Decision)); err == nil {
			cfg.Policy.Rules[i].Decision = d
		}
	}
}

// Load is a convenience function using the default loader
func Load() (*Config, error) {
	return NewLoader().Load()
}
