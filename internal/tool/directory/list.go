package directory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Cyclone1070/toolgate/internal/config"
	"github.com/Cyclone1070/toolgate/internal/tool"
)

// ListDirectoryTool lists workspace directories, optionally recursively.
type ListDirectoryTool struct {
	fs       fileSystem
	resolver pathResolver
	config   *config.Config
}

// NewListDirectoryTool creates a new ListDirectoryTool with injected dependencies.
func NewListDirectoryTool(fs fileSystem, resolver pathResolver, cfg *config.Config) *ListDirectoryTool {
	if fs == nil {
		panic("fs is required")
	}
	if resolver == nil {
		panic("resolver is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &ListDirectoryTool{fs: fs, resolver: resolver, config: cfg}
}

func (t *ListDirectoryTool) Name() string { return "list_directory" }

func (t *ListDirectoryTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        t.Name(),
		Description: "Lists a directory in the workspace. Directories come first. Entries matched by .gitignore are skipped unless include_ignored is set.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":            {Type: tool.TypeString, Description: "Directory path, relative to the workspace root. Defaults to the root."},
				"max_depth":       {Type: tool.TypeInteger, Description: "How many levels to descend. Defaults to 1.", Minimum: tool.Min(0)},
				"include_ignored": {Type: tool.TypeBoolean, Description: "Include entries matched by .gitignore"},
				"offset":          {Type: tool.TypeInteger, Description: "Number of entries to skip", Minimum: tool.Min(0)},
				"limit":           {Type: tool.TypeInteger, Description: "Maximum number of entries to return", Minimum: tool.Min(0)},
			},
		},
	}
}

func (t *ListDirectoryTool) Input() any { return &ListDirectoryInput{} }

// Execute lists the requested directory.
func (t *ListDirectoryTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ListDirectoryInput)
	if !ok {
		return nil, tool.InputTypeError(t.Name(), input)
	}
	listing, err := t.List(ctx, req)
	if err != nil {
		return nil, err
	}
	return tool.TextResult{
		Content: format(listing),
		Summary: fmt.Sprintf("Listed %s (%d of %d entries)", displayPath(listing.DirectoryPath), len(listing.Entries), listing.TotalCount),
	}, nil
}

// List walks the directory and returns one page of entries.
func (t *ListDirectoryTool) List(ctx context.Context, req *ListDirectoryInput) (*Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := req.Path
	if target == "" {
		target = "."
	}
	abs, err := t.resolver.Abs(target)
	if err != nil {
		return nil, err
	}
	rel, err := t.resolver.Rel(abs)
	if err != nil {
		return nil, err
	}

	info, err := t.fs.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", displayPath(rel), err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, displayPath(rel))
	}

	limit := req.Limit
	if limit == 0 {
		limit = t.config.Tools.DefaultListDirectoryLimit
	}
	if limit > t.config.Tools.MaxListDirectoryLimit {
		return nil, &LimitError{Limit: limit, Max: t.config.Tools.MaxListDirectoryLimit}
	}

	maxDepth := req.MaxDepth
	if maxDepth == 0 {
		maxDepth = 1
	}

	var ignore *IgnoreMatcher
	if !req.IncludeIgnored {
		ignore = NewIgnoreMatcher(t.resolver.Root(), t.fs)
	}

	entries, capped, err := t.walk(ctx, abs, rel, maxDepth, ignore)
	if err != nil {
		return nil, err
	}

	// Directories first, then files, both alphabetically
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].RelativePath < entries[j].RelativePath
	})

	listing := &Listing{
		DirectoryPath: rel,
		Offset:        req.Offset,
		Limit:         limit,
		TotalCount:    len(entries),
	}

	start := min(req.Offset, len(entries))
	end := min(start+limit, len(entries))
	listing.Entries = entries[start:end]

	switch {
	case capped:
		listing.Truncated = true
		listing.TruncationReason = fmt.Sprintf("stopped after %d entries", t.config.Tools.MaxListDirectoryResults)
	case end < len(entries):
		listing.Truncated = true
		listing.TruncationReason = fmt.Sprintf("%d more entries, use offset=%d", len(entries)-end, end)
	}
	return listing, nil
}

type pending struct {
	abs   string
	rel   string
	depth int
}

// walk collects entries breadth first. Symlinks are reported but never
// followed, so link cycles cannot recurse.
func (t *ListDirectoryTool) walk(ctx context.Context, abs, rel string, maxDepth int, ignore *IgnoreMatcher) ([]Entry, bool, error) {
	maxResults := t.config.Tools.MaxListDirectoryResults
	var entries []Entry
	queue := []pending{{abs: abs, rel: rel, depth: 1}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		dir := queue[0]
		queue = queue[1:]

		infos, err := t.fs.ListDir(dir.abs)
		if err != nil {
			if dir.abs == abs {
				return nil, false, fmt.Errorf("failed to list %s: %w", displayPath(dir.rel), err)
			}
			// Unreadable subdirectories are skipped
			continue
		}

		for _, fi := range infos {
			entryRel := fi.Name()
			if dir.rel != "" {
				entryRel = dir.rel + "/" + fi.Name()
			}
			isSymlink := fi.Mode()&os.ModeSymlink != 0
			isDir := fi.IsDir() && !isSymlink
			if ignore.ShouldIgnore(entryRel, isDir) {
				continue
			}

			if len(entries) >= maxResults {
				return entries, true, nil
			}
			entries = append(entries, Entry{
				RelativePath: entryRel,
				IsDir:        isDir,
				IsSymlink:    isSymlink,
				Size:         fi.Size(),
			})

			if isDir && dir.depth < maxDepth {
				queue = append(queue, pending{
					abs:   filepath.Join(dir.abs, fi.Name()),
					rel:   entryRel,
					depth: dir.depth + 1,
				})
			}
		}
	}
	return entries, false, nil
}

func format(l *Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Directory: %s\n", displayPath(l.DirectoryPath))
	if len(l.Entries) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, e := range l.Entries {
		switch {
		case e.IsDir:
			fmt.Fprintf(&b, "%s/\n", e.RelativePath)
		case e.IsSymlink:
			fmt.Fprintf(&b, "%s@\n", e.RelativePath)
		default:
			fmt.Fprintf(&b, "%s (%d bytes)\n", e.RelativePath, e.Size)
		}
	}
	if l.Truncated {
		fmt.Fprintf(&b, "[Truncated: %s]\n", l.TruncationReason)
	}
	return b.String()
}

func displayPath(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
