package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/toolgate/internal/config"
	"github.com/Cyclone1070/toolgate/internal/tool"
)

// WriteFileTool creates or replaces files in the workspace.
type WriteFileTool struct {
	fs       fileWriter
	resolver pathResolver
	config   *config.Config
}

// NewWriteFileTool creates a new WriteFileTool with injected dependencies.
func NewWriteFileTool(fs fileWriter, resolver pathResolver, cfg *config.Config) *WriteFileTool {
	if fs == nil {
		panic("fs is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &WriteFileTool{fs: fs, resolver: resolver, config: cfg}
}

func (t *WriteFileTool) Name() string { return "write_file" }

func (t *WriteFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        t.Name(),
		Description: "Writes content to a file in the workspace, creating parent directories and replacing any existing file.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":    {Type: tool.TypeString, Description: "File path, relative to the workspace root"},
				"content": {Type: tool.TypeString, Description: "Full file content"},
			},
			Required: []string{"path", "content"},
		},
	}
}

func (t *WriteFileTool) Input() any { return &WriteFileInput{} }

// Execute writes the file atomically, keeping the mode of an existing file.
func (t *WriteFileTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*WriteFileInput)
	if !ok {
		return nil, tool.InputTypeError(t.Name(), input)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if size := int64(len(req.Content)); size > t.config.Tools.MaxFileSize {
		return nil, &TooLargeError{Path: req.Path, Size: size, Limit: t.config.Tools.MaxFileSize}
	}

	abs, err := t.resolver.Abs(req.Path)
	if err != nil {
		return nil, err
	}
	rel, err := t.resolver.Rel(abs)
	if err != nil {
		return nil, err
	}

	perm := os.FileMode(0o644)
	created := true
	if info, err := t.fs.Stat(abs); err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrIsDirectory, rel)
		}
		perm = info.Mode().Perm()
		created = false
	}

	if err := t.fs.EnsureDirs(filepath.Dir(abs)); err != nil {
		return nil, fmt.Errorf("failed to create parent directories for %s: %w", rel, err)
	}
	if err := t.fs.WriteFileAtomic(abs, []byte(req.Content), perm); err != nil {
		return nil, err
	}

	verb := "Updated"
	if created {
		verb = "Created"
	}
	msg := fmt.Sprintf("%s %s (%d bytes)", verb, rel, len(req.Content))
	return tool.TextResult{Content: msg}, nil
}
