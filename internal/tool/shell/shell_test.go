package shell

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Cyclone1070/toolgate/internal/config"
	"github.com/Cyclone1070/toolgate/internal/tool"
	"github.com/Cyclone1070/toolgate/internal/tool/fsutil"
	"github.com/Cyclone1070/toolgate/internal/tool/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProcess blocks in Wait until released, killed or interrupted.
type mockProcess struct {
	mu           sync.Mutex
	exit         chan error
	signals      []os.Signal
	killed       bool
	ignoreSigint bool
}

func newMockProcess() *mockProcess {
	return &mockProcess{exit: make(chan error, 1)}
}

func (p *mockProcess) Wait() error { return <-p.exit }

func (p *mockProcess) Signal(sig os.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signals = append(p.signals, sig)
	if !p.ignoreSigint {
		p.finish(errors.New("interrupted"))
	}
	return nil
}

func (p *mockProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed = true
	p.finish(errors.New("killed"))
	return nil
}

func (p *mockProcess) finish(err error) {
	select {
	case p.exit <- err:
	default:
	}
}

type mockExecutor struct {
	StartFunc func(ctx context.Context, command []string, opts ProcessOptions) (Process, error)
}

func (m *mockExecutor) Start(ctx context.Context, command []string, opts ProcessOptions) (Process, error) {
	return m.StartFunc(ctx, command, opts)
}

func newShell(t *testing.T, executor commandExecutor) (string, *ShellTool) {
	t.Helper()
	root, err := pathutil.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	if executor == nil {
		executor = OSProcessFactory{}
	}
	cfg := config.DefaultConfig()
	cfg.Tools.ShellGracefulShutdownMs = 50
	return root, NewShellTool(fsutil.NewOSFileSystem(), executor, pathutil.NewResolver(root), cfg)
}

func run(t *testing.T, st *ShellTool, args string) (tool.Result, error) {
	t.Helper()
	inv, err := tool.Bind(st, json.RawMessage(args))
	if err != nil {
		return nil, err
	}
	return inv.Run(context.Background())
}

func TestShell_Success(t *testing.T) {
	_, st := newShell(t, nil)

	res, err := run(t, st, `{"command":["sh","-c","echo hello"]}`)

	require.NoError(t, err)
	assert.Equal(t, "Exit code: 0\nStdout:\nhello\n", res.LLMContent())
	display, ok := res.Display().(tool.ShellDisplay)
	require.True(t, ok)
	assert.Equal(t, "sh -c echo hello", display.Command)
	assert.Equal(t, ".", display.WorkingDir)
	assert.Equal(t, 0, display.ExitCode)
}

func TestShell_NonZeroExitIsResult(t *testing.T) {
	_, st := newShell(t, nil)

	res, err := run(t, st, `{"command":["sh","-c","echo oops >&2; exit 3"]}`)

	require.NoError(t, err)
	sr := res.(*ShellResult)
	assert.Equal(t, 3, sr.ExitCode)
	assert.Equal(t, "oops\n", sr.Stderr)
	assert.Contains(t, res.LLMContent(), "Stderr:\noops")
}

func TestShell_WorkingDirAndEnv(t *testing.T) {
	root, st := newShell(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("# comment\nFROM_FILE='file'\nSHARED=file\n"), 0o644))

	res, err := run(t, st, `{
		"command": ["sh", "-c", "echo $FROM_FILE $SHARED $(basename $(pwd))"],
		"working_dir": "sub",
		"env": {"SHARED": "explicit"},
		"env_files": [".env"]
	}`)

	require.NoError(t, err)
	sr := res.(*ShellResult)
	assert.Equal(t, "file explicit sub\n", sr.Stdout)
	assert.Equal(t, "sub", sr.WorkingDir)
}

func TestShell_Errors(t *testing.T) {
	root, st := newShell(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(root, "plain"), []byte("x"), 0o644))

	_, err := run(t, st, `{"command":["true"],"working_dir":"../.."}`)
	assert.ErrorIs(t, err, pathutil.ErrOutsideWorkspace)

	_, err = run(t, st, `{"command":["true"],"working_dir":"plain"}`)
	assert.ErrorContains(t, err, "not a directory")

	_, err = run(t, st, `{"command":["true"],"env_files":["missing.env"]}`)
	var envErr *EnvFileError
	assert.ErrorAs(t, err, &envErr)

	_, err = run(t, st, `{"command":["definitely-not-a-real-binary-xyz"]}`)
	assert.ErrorContains(t, err, "failed to start")

	_, err = run(t, st, `{"command":[]}`)
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = run(t, st, `{"command":["true"],"timeout_seconds":-1}`)
	var vErr *tool.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestShell_OutputTruncated(t *testing.T) {
	_, st := newShell(t, nil)
	st.config.Tools.MaxCommandOutputSize = 4

	res, err := run(t, st, `{"command":["sh","-c","echo 0123456789"]}`)

	require.NoError(t, err)
	sr := res.(*ShellResult)
	assert.Equal(t, "0123", sr.Stdout)
	assert.True(t, sr.Truncated)
	assert.Contains(t, res.LLMContent(), "[Output truncated]")
}

func TestShell_Timeout(t *testing.T) {
	proc := newMockProcess()
	_, st := newShell(t, &mockExecutor{StartFunc: func(ctx context.Context, command []string, opts ProcessOptions) (Process, error) {
		_, _ = opts.Stdout.Write([]byte("partial"))
		return proc, nil
	}})

	inv, err := tool.Bind(st, json.RawMessage(`{"command":["sleep","100"],"timeout_seconds":1}`))
	require.NoError(t, err)
	_, err = inv.Run(context.Background())

	assert.ErrorIs(t, err, ErrTimeout)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "partial", timeoutErr.Stdout)
	assert.Equal(t, []os.Signal{os.Interrupt}, proc.signals)
}

func TestShell_Cancelled(t *testing.T) {
	proc := newMockProcess()
	started := make(chan struct{})
	_, st := newShell(t, &mockExecutor{StartFunc: func(ctx context.Context, command []string, opts ProcessOptions) (Process, error) {
		close(started)
		return proc, nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := st.Execute(ctx, &ShellInput{Command: []string{"sleep", "100"}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, proc.killed)
}

func TestExecuteWithTimeout_KillsAfterGrace(t *testing.T) {
	proc := newMockProcess()
	proc.ignoreSigint = true

	err := ExecuteWithTimeout(context.Background(), 10*time.Millisecond, 10*time.Millisecond, proc)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, proc.killed)
}

func TestExecuteWithTimeout_Completes(t *testing.T) {
	proc := newMockProcess()
	proc.finish(nil)

	err := ExecuteWithTimeout(context.Background(), time.Second, time.Second, proc)

	assert.NoError(t, err)
	assert.False(t, proc.killed)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, -1, ExitCode(errors.New("boom")))
}

func TestCollector(t *testing.T) {
	t.Run("Truncates at limit", func(t *testing.T) {
		c := NewCollector(5)
		n, err := c.Write([]byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		n, _ = c.Write([]byte("defgh"))
		assert.Equal(t, 5, n)
		assert.Equal(t, "abcde", c.String())
		assert.True(t, c.Truncated())
	})

	t.Run("Binary output replaced", func(t *testing.T) {
		c := NewCollector(100)
		_, _ = c.Write([]byte("ab\x00cd"))
		_, _ = c.Write([]byte("more"))
		assert.Equal(t, "[Binary Content]", c.String())
		assert.True(t, c.Truncated())
	})

	t.Run("Null byte in later chunk", func(t *testing.T) {
		c := NewCollector(100)
		_, _ = c.Write([]byte("text"))
		_, _ = c.Write([]byte{'x', 0})
		assert.Equal(t, "[Binary Content]", c.String())
	})

	t.Run("Null byte past sample kept", func(t *testing.T) {
		c := NewCollector(10000)
		_, _ = c.Write([]byte(strings.Repeat("a", binarySampleSize)))
		_, _ = c.Write([]byte{0})
		assert.Len(t, c.String(), binarySampleSize+1)
		assert.False(t, c.Truncated())
	})
}

func TestParseEnv(t *testing.T) {
	env, err := ParseEnv([]byte("# c\n\nA=1\nexport B = \"two words\"\nC='x=y'\r\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "two words", "C": "x=y"}, env)

	_, err = ParseEnv([]byte("NOEQUALS\n"))
	assert.ErrorContains(t, err, "invalid line 1")
}

func TestShellInput_Describe(t *testing.T) {
	assert.Equal(t, "Running go test ./...", (&ShellInput{Command: []string{"go", "test", "./..."}}).String())
}
