package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Cyclone1070/toolgate/internal/confirmation"
	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown for the terminal.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// NewGlamourRenderer returns a renderer wrapping at width columns.
func NewGlamourRenderer(width int) (MarkdownRenderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return r, nil
}

// PreviewMarkdown describes the arguments of req as markdown. Shell
// commands are shown as a command line, everything else as indented JSON.
func PreviewMarkdown(req confirmation.Request) string {
	if req.ToolName == "run_shell" {
		var args struct {
			Command    []string `json:"command"`
			WorkingDir string   `json:"working_dir"`
		}
		if err := json.Unmarshal(req.Args, &args); err == nil && len(args.Command) > 0 {
			var sb strings.Builder
			if args.WorkingDir != "" {
				fmt.Fprintf(&sb, "In `%s`:\n\n", args.WorkingDir)
			}
			fmt.Fprintf(&sb, "```sh\n$ %s\n```\n", strings.Join(args.Command, " "))
			return sb.String()
		}
	}

	if len(req.Args) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, req.Args, "", "  "); err != nil {
		return "```\n" + string(req.Args) + "\n```\n"
	}
	return "```json\n" + buf.String() + "\n```\n"
}

// renderPreview renders the preview, falling back to the raw markdown when
// the renderer fails.
func renderPreview(r MarkdownRenderer, req confirmation.Request) string {
	md := PreviewMarkdown(req)
	if md == "" || r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
