package directory

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreMatcher answers whether a workspace-relative path is excluded by the
// root .gitignore. The zero value ignores nothing.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher parses the root .gitignore. A missing file yields a
// matcher that never ignores.
func NewIgnoreMatcher(root string, fs fileSystem) *IgnoreMatcher {
	data, err := fs.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return &IgnoreMatcher{}
	}
	return ParseIgnore(string(data))
}

// ParseIgnore builds a matcher from .gitignore content.
func ParseIgnore(content string) *IgnoreMatcher {
	var patterns []gitignore.Pattern
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return &IgnoreMatcher{}
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}
}

// ShouldIgnore reports whether relativePath matches. A non-nil matcher
// always ignores the .git directory; a nil matcher ignores nothing.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if m == nil {
		return false
	}
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return false
	}
	if segments[0] == ".git" {
		return true
	}
	if m.matcher == nil {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

func splitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
