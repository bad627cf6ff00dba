package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Cyclone1070/toolgate/internal/config"
	"github.com/Cyclone1070/toolgate/internal/tool"
)

// ShellTool executes commands on the local machine.
type ShellTool struct {
	fs       fileReader
	executor commandExecutor
	resolver pathResolver
	config   *config.Config
}

// NewShellTool creates a new ShellTool with injected dependencies.
func NewShellTool(fs fileReader, executor commandExecutor, resolver pathResolver, cfg *config.Config) *ShellTool {
	if fs == nil {
		panic("fs is required")
	}
	if executor == nil {
		panic("executor is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &ShellTool{fs: fs, executor: executor, resolver: resolver, config: cfg}
}

func (t *ShellTool) Name() string { return "run_shell" }

func (t *ShellTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        t.Name(),
		Description: "Runs a command in the workspace without a shell. Pass the program and its arguments as separate items, e.g. [\"go\", \"test\", \"./...\"]. Wrap in [\"sh\", \"-c\", \"...\"] for pipes.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"command":         {Type: tool.TypeArray, Description: "Program and arguments", Items: &tool.Schema{Type: tool.TypeString}},
				"working_dir":     {Type: tool.TypeString, Description: "Working directory, relative to the workspace root"},
				"timeout_seconds": {Type: tool.TypeInteger, Description: "Kill the command after this many seconds", Minimum: tool.Min(0)},
				"env":             {Type: tool.TypeObject, Description: "Extra environment variables"},
				"env_files":       {Type: tool.TypeArray, Description: ".env files to load, relative to the workspace root", Items: &tool.Schema{Type: tool.TypeString}},
			},
			Required: []string{"command"},
		},
	}
}

func (t *ShellTool) Input() any { return &ShellInput{} }

// Execute runs the command and collects its output. A non-zero exit code is
// a successful result; timeouts and cancellation are errors.
func (t *ShellTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ShellInput)
	if !ok {
		return nil, tool.InputTypeError(t.Name(), input)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workingDir := req.WorkingDir
	if workingDir == "" {
		workingDir = "."
	}
	wd, err := t.resolver.Abs(workingDir)
	if err != nil {
		return nil, fmt.Errorf("working directory %s: %w", workingDir, err)
	}
	info, err := t.fs.Stat(wd)
	if err != nil {
		return nil, fmt.Errorf("working directory %s: %w", workingDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory %s is not a directory", workingDir)
	}
	relWd, err := t.resolver.Rel(wd)
	if err != nil {
		return nil, err
	}

	env, err := t.buildEnv(req)
	if err != nil {
		return nil, err
	}

	maxOutput := t.config.Tools.MaxCommandOutputSize
	stdout := NewCollector(maxOutput)
	stderr := NewCollector(maxOutput)
	grace := time.Duration(t.config.Tools.ShellGracefulShutdownMs) * time.Millisecond

	start := time.Now()
	proc, err := t.executor.Start(ctx, req.Command, ProcessOptions{
		Dir:       wd,
		Env:       env,
		Stdout:    stdout,
		Stderr:    stderr,
		WaitDelay: grace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", req.Command[0], err)
	}

	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = time.Duration(t.config.Tools.DefaultShellTimeout) * time.Second
	}

	execErr := ExecuteWithTimeout(ctx, timeout, grace, proc)

	switch {
	case errors.Is(execErr, ErrTimeout):
		return nil, &TimeoutError{Timeout: timeout, Stdout: stdout.String(), Stderr: stderr.String()}
	case errors.Is(execErr, context.Canceled), errors.Is(execErr, context.DeadlineExceeded):
		return nil, execErr
	}

	exitCode := ExitCode(execErr)
	if exitCode == -1 {
		return nil, fmt.Errorf("command %s failed: %w", req.Command[0], execErr)
	}

	if relWd == "" {
		relWd = "."
	}
	return &ShellResult{
		Command:    strings.Join(req.Command, " "),
		WorkingDir: relWd,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		ExitCode:   exitCode,
		Truncated:  stdout.Truncated() || stderr.Truncated(),
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// buildEnv layers the process environment, env files in order, then
// explicit variables.
func (t *ShellTool) buildEnv(req *ShellInput) ([]string, error) {
	env := os.Environ()

	for _, envFile := range req.EnvFiles {
		path, err := t.resolver.Abs(envFile)
		if err != nil {
			return nil, &EnvFileError{Path: envFile, Cause: err}
		}
		data, err := t.fs.ReadFile(path)
		if err != nil {
			return nil, &EnvFileError{Path: filepath.ToSlash(envFile), Cause: err}
		}
		vars, err := ParseEnv(data)
		if err != nil {
			return nil, &EnvFileError{Path: envFile, Cause: err}
		}
		env = appendSorted(env, vars)
	}

	return appendSorted(env, req.Env), nil
}

// appendSorted appends KEY=VALUE pairs in key order. os/exec keeps the last
// value of a duplicated key.
func appendSorted(env []string, vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}
