package containment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	referenceScheme = "file://"
	artifactExt     = ".txt"
)

// LocalStore keeps full tool outputs on disk under <root>/<sessionID>/<id>.txt.
// Files are only ever created, never rewritten, so concurrent writers do not collide.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve artifact directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

// Root returns the absolute artifact directory.
func (s *LocalStore) Root() string {
	return s.root
}

// Put writes data to a fresh file in the session directory and returns its
// reference (a file:// URL).
func (s *LocalStore) Put(ctx context.Context, sessionID, data string) (string, error) {
	if err := validSessionID(sessionID); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	filePath := filepath.Join(dir, uuid.NewString()+artifactExt)

	// Write to temp file first, then rename
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath) //nolint:errcheck
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return "", fmt.Errorf("rename artifact: %w", err)
	}

	return referenceScheme + filePath, nil
}

// Read returns the content behind a reference produced by Put.
func (s *LocalStore) Read(ref string) (string, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	return string(data), nil
}

func (s *LocalStore) resolve(ref string) (string, error) {
	path, ok := strings.CutPrefix(ref, referenceScheme)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q is outside %s", ErrInvalidReference, ref, s.root)
	}
	return path, nil
}

func validSessionID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}
