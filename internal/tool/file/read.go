// Package file implements the read_file and write_file tools.
package file

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/toolgate/internal/config"
	"github.com/Cyclone1070/toolgate/internal/tool"
	"github.com/Cyclone1070/toolgate/internal/tool/content"
)

// ReadFileTool handles file reading operations.
type ReadFileTool struct {
	fs       fileReader
	resolver pathResolver
	config   *config.Config
}

// NewReadFileTool creates a new ReadFileTool with injected dependencies.
func NewReadFileTool(fs fileReader, resolver pathResolver, cfg *config.Config) *ReadFileTool {
	if fs == nil {
		panic("fs is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &ReadFileTool{fs: fs, resolver: resolver, config: cfg}
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        t.Name(),
		Description: "Reads a text file from the workspace. Use offset and limit (in bytes) to read part of a large file.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":   {Type: tool.TypeString, Description: "File path, relative to the workspace root"},
				"offset": {Type: tool.TypeInteger, Description: "Byte offset to start reading from", Minimum: tool.Min(0)},
				"limit":  {Type: tool.TypeInteger, Description: "Maximum number of bytes to read", Minimum: tool.Min(0)},
			},
			Required: []string{"path"},
		},
	}
}

func (t *ReadFileTool) Input() any { return &ReadFileInput{} }

// Execute reads a file from the workspace with optional offset and limit.
// The path must stay inside the workspace; binary and oversized files are rejected.
func (t *ReadFileTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ReadFileInput)
	if !ok {
		return nil, tool.InputTypeError(t.Name(), input)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := t.resolver.Abs(req.Path)
	if err != nil {
		return nil, err
	}
	rel, err := t.resolver.Rel(abs)
	if err != nil {
		return nil, err
	}

	info, err := t.fs.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", rel, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, rel)
	}

	maxFileSize := t.config.Tools.MaxFileSize
	if info.Size() > maxFileSize && req.Limit == nil {
		return nil, &TooLargeError{Path: rel, Size: info.Size(), Limit: maxFileSize}
	}

	var offset, limit int64
	if req.Offset != nil {
		offset = *req.Offset
	}
	if req.Limit != nil {
		limit = min(*req.Limit, maxFileSize)
	}

	data, err := t.fs.ReadFileRange(abs, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	if content.IsBinaryContent(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinaryFile, rel)
	}

	return tool.TextResult{
		Content: string(data),
		Summary: fmt.Sprintf("Read %s (%d of %d bytes)", rel, len(data), info.Size()),
	}, nil
}
