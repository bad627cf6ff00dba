package directory

import "os"

// fileSystem is the subset of fsutil.OSFileSystem the tool needs.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	ListDir(path string) ([]os.FileInfo, error)
}

type pathResolver interface {
	Abs(path string) (string, error)
	Rel(path string) (string, error)
	Root() string
}
