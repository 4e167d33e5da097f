package compare

import (
	"context"
	"path/filepath"

	"github.com/sdejongh/dirmirror/pkg/storage"
)

// FileFailure is a common file whose content could not be compared
type FileFailure struct {
	Name string
	Err  error
}

// ContentDiffer finds the common files of a level whose content differs
type ContentDiffer struct {
	comparator Comparator
}

// NewContentDiffer creates a differ using the given comparator
func NewContentDiffer(comparator Comparator) *ContentDiffer {
	return &ContentDiffer{comparator: comparator}
}

// Diff compares every name in files under dir on both sides. It returns
// the names whose content differs and the names that could not be read.
// Nothing is cached between calls.
func (d *ContentDiffer) Diff(ctx context.Context, source, dest storage.Backend, dir string, files []string) ([]string, []FileFailure) {
	var mismatches []string
	var failures []FileFailure

	for _, name := range files {
		if ctx.Err() != nil {
			break
		}

		cmp, err := d.comparator.Compare(ctx, source, dest, filepath.Join(dir, name))
		if err != nil {
			failures = append(failures, FileFailure{Name: name, Err: err})
			continue
		}

		if cmp.Result == Different {
			mismatches = append(mismatches, name)
		}
	}

	return mismatches, failures
}
