// Package fsutil implements the filesystem operations tools depend on.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OSFileSystem implements filesystem operations using the local OS filesystem primitives.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat returns file info for a path (follows symlinks).
func (fs *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads a whole file.
func (fs *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadFileRange reads up to limit bytes starting at offset.
// A limit of 0 reads to the end of the file.
func (fs *OSFileSystem) ReadFileRange(path string, offset, limit int64) ([]byte, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	fileSize := info.Size()

	if offset == 0 && limit == 0 {
		return io.ReadAll(file)
	}
	if offset >= fileSize {
		return []byte{}, nil
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	readSize := fileSize - offset
	if limit > 0 {
		readSize = min(readSize, limit)
	}

	buf := make([]byte, readSize)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

// WriteFileAtomic writes content to a file using temp file + rename, so a
// crash mid-write leaves the original file intact.
func (fs *OSFileSystem) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Stage: "create temp", Cause: err}
	}

	tmpPath := tmpFile.Name()
	needsCleanup := true

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}
		if needsCleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return &WriteError{Path: path, Stage: "write", Cause: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &WriteError{Path: path, Stage: "sync", Cause: err}
	}

	// Close file before rename (required on some systems)
	if err := tmpFile.Close(); err != nil {
		tmpFile = nil
		return &WriteError{Path: path, Stage: "close", Cause: err}
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, path); err != nil {
		return &WriteError{Path: path, Stage: "rename", Cause: err}
	}
	needsCleanup = false

	if err := os.Chmod(path, perm); err != nil {
		return &WriteError{Path: path, Stage: "chmod", Cause: err}
	}
	return nil
}

// EnsureDirs creates parent directories recursively if they don't exist.
func (fs *OSFileSystem) EnsureDirs(path string) error {
	return os.MkdirAll(path, 0o755)
}

// ListDir lists the contents of a directory.
func (fs *OSFileSystem) ListDir(path string) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	infos := make([]os.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
