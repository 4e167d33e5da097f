package compare

import (
	"context"

	"github.com/sdejongh/dirmirror/pkg/storage"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are identical
	Same Result = "same"
	// Different indicates files differ
	Different Result = "different"
)

// Comparison holds the result of comparing two files
type Comparison struct {
	Path   string
	Result Result
	Reason string
}

// Comparator defines the interface for file comparison algorithms.
// path is relative to both backends' roots.
type Comparator interface {
	// Compare compares the file at path on both sides
	Compare(ctx context.Context, source, dest storage.Backend, path string) (*Comparison, error)

	// Name returns the name of the comparison method
	Name() string
}
