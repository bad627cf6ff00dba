package shell

import (
	"context"
	"os"
)

// Process is a started command.
type Process interface {
	Wait() error
	Signal(sig os.Signal) error
	Kill() error
}

// commandExecutor starts processes. OSProcessFactory is the real one.
type commandExecutor interface {
	Start(ctx context.Context, command []string, opts ProcessOptions) (Process, error)
}

type pathResolver interface {
	Abs(path string) (string, error)
	Rel(path string) (string, error)
}

type fileReader interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}
