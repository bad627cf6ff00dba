// Package pathutil keeps tool paths inside the workspace.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver provides path resolution within a workspace boundary.
type Resolver struct {
	workspaceRoot string
}

// NewResolver creates a new path resolver for the given workspace.
// The root should already be canonical (see CanonicaliseRoot).
func NewResolver(workspaceRoot string) *Resolver {
	return &Resolver{
		workspaceRoot: workspaceRoot,
	}
}

// Root returns the workspace root.
func (r *Resolver) Root() string {
	return r.workspaceRoot
}

// CanonicaliseRoot makes root absolute and resolves symlinks.
// Returns an error if the path doesn't exist or isn't a directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &WorkspaceRootError{Root: root, Cause: err}
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &WorkspaceRootError{Root: absRoot, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &WorkspaceRootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &WorkspaceRootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// Abs resolves path to an absolute path inside the workspace.
// Existing paths are also checked after symlink resolution, so a link
// pointing outside the workspace is rejected.
func (r *Resolver) Abs(path string) (string, error) {
	if r.workspaceRoot == "" {
		return "", ErrWorkspaceRootNotSet
	}

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(r.workspaceRoot, path))
	}

	if !r.within(abs) {
		return "", ErrOutsideWorkspace
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil && !r.within(resolved) {
		return "", ErrOutsideWorkspace
	}

	return abs, nil
}

// Rel resolves path relative to the workspace root. The root itself is "".
func (r *Resolver) Rel(path string) (string, error) {
	abs, err := r.Abs(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(r.workspaceRoot, abs)
	if err != nil {
		return "", ErrOutsideWorkspace
	}

	if rel == "." {
		return "", nil
	}

	return filepath.ToSlash(rel), nil
}

// within reports whether abs is the root itself or a child of it.
func (r *Resolver) within(abs string) bool {
	return abs == r.workspaceRoot || strings.HasPrefix(abs, r.workspaceRoot+string(filepath.Separator))
}
