package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks config values for life correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	// Tools validation
	if c.Tools.MaxFileSize < 1 {
		errs = append(errs, "tools.max_file_size must be >= 1")
	}
	if c.Tools.DefaultListDirectoryLimit < 1 {
		errs = append(errs, "tools.default_list_directory_limit must be >= 1")
	}
	if c.Tools.MaxListDirectoryLimit < 1 {
		errs = append(errs, "tools.max_list_directory_limit must be >= 1")
	}
	if c.Tools.MaxListDirectoryResults < 1 {
		errs = append(errs, "tools.max_list_directory_results must be >= 1")
	}
	if c.Tools.MaxCommandOutputSize < 1 {
		errs = append(errs, "tools.max_command_output_size must be >= 1")
	}
	if c.Tools.DefaultShellTimeout < 1 {
		errs = append(errs, "tools.default_shell_timeout must be >= 1")
	}
	if c.Tools.ShellGracefulShutdownMs < 1 {
		errs = append(errs, "tools.shell_graceful_shutdown_ms must be >= 1")
	}
	if c.Tools.MaxParallelCalls < 1 {
		errs = append(errs, "tools.max_parallel_calls must be >= 1")
	}

	// Semantic validation: Default <= Max constraints
	if c.Tools.DefaultListDirectoryLimit > c.Tools.MaxListDirectoryLimit {
		errs = append(errs, "tools.default_list_directory_limit must be <= tools.max_list_directory_limit")
	}

	// Policy validation
	if c.Policy.DefaultDecision != "" && !c.Policy.DefaultDecision.Valid() {
		errs = append(errs, fmt.Sprintf("policy.default_decision %q must be allow, deny or ask_user", c.Policy.DefaultDecision))
	}
	for i, r := range c.Policy.Rules {
		if !r.Decision.Valid() {
			errs = append(errs, fmt.Sprintf("policy.rules[%d].decision %q must be allow, deny or ask_user", i, r.Decision))
		}
		if r.ArgsPattern != "" {
			if _, err := regexp.Compile(r.ArgsPattern); err != nil {
				errs = append(errs, fmt.Sprintf("policy.rules[%d].args_pattern is not a valid regular expression", i))
			}
		}
	}

	// Containment validation
	if c.Containment.ThresholdChars < 1 {
		errs = append(errs, "containment.threshold_chars must be >= 1")
	}
	if c.Containment.SummaryMaxTokens < 0 {
		errs = append(errs, "containment.summary_max_tokens must be >= 0")
	}

	// Model validation
	if strings.TrimSpace(c.Model.Name) == "" {
		errs = append(errs, "model.name must not be empty")
	}
	if c.Model.MaxIterations < 1 {
		errs = append(errs, "model.max_iterations must be >= 1")
	}

	// UI validation
	colors := map[string]string{
		"ui.color_primary": c.UI.ColorPrimary,
		"ui.color_success": c.UI.ColorSuccess,
		"ui.color_error":   c.UI.ColorError,
		"ui.color_muted":   c.UI.ColorMuted,
	}
	for _, key := range []string{"ui.color_primary", "ui.color_success", "ui.color_error", "ui.color_muted"} {
		if !validColor(colors[key]) {
			errs = append(errs, fmt.Sprintf("%s %q must be an ANSI code 0-255 or a hex color", key, colors[key]))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

// validColor accepts an ANSI 256 code, #RGB, #RRGGBB, or empty (terminal default).
func validColor(s string) bool {
	if s == "" {
		return true
	}
	if hexColor.MatchString(s) {
		return true
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 255
}
