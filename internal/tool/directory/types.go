// Package directory implements the list_directory tool.
package directory

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOffset = errors.New("offset cannot be negative")
	ErrInvalidLimit  = errors.New("limit cannot be negative")
	ErrInvalidDepth  = errors.New("max_depth cannot be negative")
	ErrNotDirectory  = errors.New("path is not a directory")
)

// LimitError is returned when a request asks for more entries than
// tools.max_list_directory_limit allows.
type LimitError struct {
	Limit int
	Max   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("limit %d exceeds maximum %d", e.Limit, e.Max)
}

// Entry is a single entry in a directory listing.
type Entry struct {
	RelativePath string
	IsDir        bool
	IsSymlink    bool
	Size         int64
}

// ListDirectoryInput contains parameters for a list_directory call.
type ListDirectoryInput struct {
	Path           string `json:"path"`
	MaxDepth       int    `json:"max_depth,omitempty"`
	IncludeIgnored bool   `json:"include_ignored,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// Validate checks ranges. Path is optional and defaults to the workspace root.
func (r *ListDirectoryInput) Validate() error {
	if r.Offset < 0 {
		return ErrInvalidOffset
	}
	if r.Limit < 0 {
		return ErrInvalidLimit
	}
	if r.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	return nil
}

func (r *ListDirectoryInput) String() string {
	if r.Path == "" || r.Path == "." {
		return "Listing workspace root"
	}
	return "Listing " + r.Path
}

// Listing is the outcome of one list_directory call.
type Listing struct {
	DirectoryPath    string
	Entries          []Entry
	Offset           int
	Limit            int
	TotalCount       int
	Truncated        bool
	TruncationReason string
}
