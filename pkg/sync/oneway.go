package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/sdejongh/dirmirror/pkg/compare"
	"github.com/sdejongh/dirmirror/pkg/logging"
	"github.com/sdejongh/dirmirror/pkg/models"
	"github.com/sdejongh/dirmirror/pkg/storage"
)

// copyFile copies a file from source to destination, preserving its
// modification time and permissions. sourceInfo is fetched when nil.
func (e *Executor) copyFile(ctx context.Context, path string, sourceInfo *storage.FileInfo) (int64, error) {
	if sourceInfo == nil {
		info, err := e.source.Stat(ctx, path)
		if err != nil {
			return 0, fmt.Errorf("failed to get source metadata: %w", err)
		}
		sourceInfo = info
	}

	reader, err := e.source.Read(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to read source file: %w", err)
	}
	defer reader.Close()

	written, err := e.dest.Write(ctx, path, reader, sourceInfo)
	if err != nil {
		return written, fmt.Errorf("failed to write destination file: %w", err)
	}

	return written, nil
}

// copyTree creates the directory at path in the destination and copies
// everything below it. Each directory and file gets its own record; a
// failing entry is skipped and its siblings still get copied.
func (e *Executor) copyTree(ctx context.Context, logger logging.Logger, path string, info *storage.FileInfo, report *models.PassReport) {
	rec := e.newRecord(report, models.ActionCreate, path, true)

	var err error
	if !e.dryRun {
		err = e.dest.Mkdir(ctx, path, info)
	}
	e.finish(ctx, logger, report, rec, 0, err)
	if err != nil {
		return
	}

	entries, err := e.source.ReadDir(ctx, path)
	if err != nil {
		unreadable := &compare.DirectoryUnreadableError{Path: e.source.FullPath(path), Err: err}
		report.AddError(unreadable.Path, unreadable)
		logger.Error(ctx, "Skipping unreadable directory for this pass", unreadable, logging.Fields{
			"path": unreadable.Path,
		})
		return
	}

	for i := range entries {
		if ctx.Err() != nil {
			return
		}

		child := filepath.Join(path, entries[i].Name)
		if entries[i].IsDir {
			e.copyTree(ctx, logger, child, &entries[i], report)
			continue
		}

		childRec := e.newRecord(report, models.ActionCreate, child, false)

		var n int64
		var err error
		if !e.dryRun {
			n, err = e.copyFile(ctx, child, &entries[i])
		}
		e.finish(ctx, logger, report, childRec, n, err)
	}

	if e.dryRun {
		return
	}

	// Directory times and permissions go last: writing children touches
	// the mtime and a read-only mode would have blocked them.
	if err := e.dest.SetMetadata(ctx, path, info); err != nil {
		logger.Warn(ctx, "Failed to preserve directory metadata", logging.Fields{
			"path":  e.dest.FullPath(path),
			"error": err.Error(),
		})
	}
}

// skipReason classifies why an entry was skipped
func skipReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, fs.ErrPermission):
		return "permission denied"
	case errors.Is(err, fs.ErrNotExist):
		return "not found"
	case errors.Is(err, syscall.EBUSY), errors.Is(err, syscall.ETXTBSY):
		return "in use by another process"
	default:
		return err.Error()
	}
}
