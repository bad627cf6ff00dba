package file

import "fmt"

// -- Read File --

type ReadFileInput struct {
	Path   string `json:"path"`
	Offset *int64 `json:"offset,omitempty"`
	Limit  *int64 `json:"limit,omitempty"`
}

func (r *ReadFileInput) Validate() error {
	if r.Path == "" {
		return ErrPathRequired
	}
	if r.Offset != nil && *r.Offset < 0 {
		return ErrInvalidOffset
	}
	if r.Limit != nil && *r.Limit < 0 {
		return ErrInvalidLimit
	}
	return nil
}

func (r *ReadFileInput) String() string {
	return "Reading " + r.Path
}

// -- Write File --

type WriteFileInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (r *WriteFileInput) Validate() error {
	if r.Path == "" {
		return ErrPathRequired
	}
	return nil
}

func (r *WriteFileInput) String() string {
	return fmt.Sprintf("Writing %s (%d bytes)", r.Path, len(r.Content))
}
