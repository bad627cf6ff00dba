package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileRange(t *testing.T) {
	fs := NewOSFileSystem()
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	tests := []struct {
		name          string
		offset, limit int64
		want          string
	}{
		{"whole file", 0, 0, "0123456789"},
		{"offset only", 4, 0, "456789"},
		{"offset and limit", 2, 3, "234"},
		{"limit past end", 8, 10, "89"},
		{"offset past end", 20, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fs.ReadFileRange(path, tt.offset, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	_, err := fs.ReadFileRange(path, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestWriteFileAtomic(t *testing.T) {
	fs := NewOSFileSystem()
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	require.NoError(t, fs.WriteFileAtomic(path, []byte("first"), 0o644))
	require.NoError(t, fs.WriteFileAtomic(path, []byte("second"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	err := NewOSFileSystem().WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "f"), []byte("x"), 0o644)

	var wErr *WriteError
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, "create temp", wErr.Stage)
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0o755))

	infos, err := NewOSFileSystem().ListDir(dir)

	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name())
	assert.True(t, infos[1].IsDir())
}
