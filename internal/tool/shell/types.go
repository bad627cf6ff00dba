// Package shell implements the run_shell tool.
package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/toolgate/internal/tool"
)

// ShellInput is a request to execute a command on the local machine.
type ShellInput struct {
	Command        []string          `json:"command"`
	WorkingDir     string            `json:"working_dir,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
	EnvFiles       []string          `json:"env_files,omitempty"` // relative to the workspace root
}

func (r *ShellInput) Validate() error {
	if len(r.Command) == 0 || strings.TrimSpace(r.Command[0]) == "" {
		return ErrEmptyCommand
	}
	if r.TimeoutSeconds < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

func (r *ShellInput) String() string {
	return "Running " + strings.Join(r.Command, " ")
}

// ShellResult is the outcome of a command that ran to completion, whatever
// its exit code.
type ShellResult struct {
	Command    string
	WorkingDir string
	Stdout     string
	Stderr     string
	ExitCode   int
	Truncated  bool
	DurationMs int64
}

func (r *ShellResult) LLMContent() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exit code: %d\n", r.ExitCode)
	if r.Stdout != "" {
		fmt.Fprintf(&b, "Stdout:\n%s\n", strings.TrimRight(r.Stdout, "\n"))
	}
	if r.Stderr != "" {
		fmt.Fprintf(&b, "Stderr:\n%s\n", strings.TrimRight(r.Stderr, "\n"))
	}
	if r.Truncated {
		b.WriteString("[Output truncated]\n")
	}
	return b.String()
}

func (r *ShellResult) Display() tool.ToolDisplay {
	return tool.ShellDisplay{
		Command:    r.Command,
		WorkingDir: r.WorkingDir,
		ExitCode:   r.ExitCode,
		Truncated:  r.Truncated,
	}
}

// ProcessOptions contains options for starting a process.
type ProcessOptions struct {
	Dir    string
	Env    []string
	Stdout *Collector
	Stderr *Collector
	// WaitDelay bounds how long Wait blocks on output pipes held open by
	// orphaned children after the process exits.
	WaitDelay time.Duration
}
