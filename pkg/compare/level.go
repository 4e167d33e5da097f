package compare

import (
	"context"
	"fmt"

	"github.com/sdejongh/dirmirror/pkg/models"
	"github.com/sdejongh/dirmirror/pkg/storage"
)

// DirectoryUnreadableError is returned when one side of a level cannot be listed
type DirectoryUnreadableError struct {
	Path string
	Err  error
}

func (e *DirectoryUnreadableError) Error() string {
	return fmt.Sprintf("directory unreadable: %s: %v", e.Path, e.Err)
}

func (e *DirectoryUnreadableError) Unwrap() error {
	return e.Err
}

// CompareLevel lists the immediate entries of path on both backends and
// partitions their names. Names are matched exactly. A name that is a file
// on one side and a directory on the other lands in TypeMismatches only.
func CompareLevel(ctx context.Context, source, dest storage.Backend, path string) (*models.LevelDiff, error) {
	sourceEntries, err := source.ReadDir(ctx, path)
	if err != nil {
		return nil, &DirectoryUnreadableError{Path: source.FullPath(path), Err: err}
	}

	destEntries, err := dest.ReadDir(ctx, path)
	if err != nil {
		return nil, &DirectoryUnreadableError{Path: dest.FullPath(path), Err: err}
	}

	destByName := make(map[string]storage.FileInfo, len(destEntries))
	for _, e := range destEntries {
		destByName[e.Name] = e
	}

	diff := &models.LevelDiff{Path: path}
	seen := make(map[string]bool, len(sourceEntries))

	// ReadDir returns entries sorted by name, so every list below is sorted
	for _, s := range sourceEntries {
		seen[s.Name] = true

		d, ok := destByName[s.Name]
		switch {
		case !ok:
			diff.OnlyInSource = append(diff.OnlyInSource, s.Name)
		case s.IsDir && d.IsDir:
			diff.CommonDirs = append(diff.CommonDirs, s.Name)
		case !s.IsDir && !d.IsDir:
			diff.CommonFiles = append(diff.CommonFiles, s.Name)
		default:
			diff.TypeMismatches = append(diff.TypeMismatches, s.Name)
		}
	}

	for _, d := range destEntries {
		if seen[d.Name] {
			continue
		}
		diff.OnlyInDest = append(diff.OnlyInDest, d.Name)
		if d.IsDir {
			diff.OnlyInDestDirs = append(diff.OnlyInDestDirs, d.Name)
		}
	}

	return diff, nil
}
