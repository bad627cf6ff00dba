package file

import (
	"errors"
	"fmt"
)

var (
	ErrPathRequired  = errors.New("path is required")
	ErrInvalidOffset = errors.New("offset must be >= 0")
	ErrInvalidLimit  = errors.New("limit must be >= 0")
	ErrIsDirectory   = errors.New("path is a directory")
	ErrBinaryFile    = errors.New("file is binary")
)

// TooLargeError is returned when a file exceeds tools.max_file_size.
type TooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file %s is too large (%d bytes, limit %d)", e.Path, e.Size, e.Limit)
}
