package sync

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/dirmirror/pkg/compare"
	"github.com/sdejongh/dirmirror/pkg/logging"
	"github.com/sdejongh/dirmirror/pkg/models"
	"github.com/sdejongh/dirmirror/pkg/output"
	"github.com/sdejongh/dirmirror/pkg/storage"
)

// Executor runs mirror passes converging dest to source
type Executor struct {
	source    storage.Backend
	dest      storage.Backend
	differ    *compare.ContentDiffer
	formatter output.Formatter
	logger    logging.Logger
	dryRun    bool
}

// NewExecutor creates a new executor. formatter and logger may be nil.
func NewExecutor(
	source, dest storage.Backend,
	comparator compare.Comparator,
	formatter output.Formatter,
	logger logging.Logger,
) *Executor {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Executor{
		source:    source,
		dest:      dest,
		differ:    compare.NewContentDiffer(comparator),
		formatter: formatter,
		logger:    logger,
	}
}

// SetDryRun makes passes report their actions without applying them
func (e *Executor) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// Sync runs one complete pass. Per-entry and per-level failures are
// recorded in the report; the pass itself never fails.
func (e *Executor) Sync(ctx context.Context) *models.PassReport {
	report := models.NewPassReport(uuid.New().String(), models.DirectoryPair{
		Source: e.source.Root(),
		Dest:   e.dest.Root(),
	})
	logger := e.logger.WithFields(logging.Fields{"pass_id": report.PassID})

	if e.formatter != nil {
		e.formatter.Start(report)
	}
	logger.Debug(ctx, "Starting mirror pass", logging.Fields{
		"source": report.SourcePath,
		"dest":   report.DestPath,
	})

	if err := e.syncLevel(ctx, logger, "", report); err != nil {
		if ctx.Err() != nil {
			report.Cancel()
		} else {
			report.AddError(e.source.Root(), err)
			logger.Error(ctx, "Mirror pass aborted", err, nil)
		}
	}

	report.Finish()

	if e.formatter != nil {
		e.formatter.Complete(report)
	}
	logger.Debug(ctx, "Mirror pass complete", logging.Fields{
		"status":   string(report.Status),
		"changes":  report.Stats.Changes(),
		"skipped":  report.Stats.Skipped,
		"duration": report.Duration.String(),
	})

	return report
}

// syncLevel converges one directory level, then recurses into the common
// subdirectories. It returns an error only when the level itself could not
// be listed or the context was cancelled.
func (e *Executor) syncLevel(ctx context.Context, logger logging.Logger, dir string, report *models.PassReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	diff, err := compare.CompareLevel(ctx, e.source, e.dest, dir)
	if err != nil {
		return err
	}
	report.Stats.LevelsCompared++
	report.Stats.FilesCompared += len(diff.CommonFiles)

	for _, name := range diff.TypeMismatches {
		report.Stats.TypeMismatches++
		logger.Warn(ctx, "Entry type differs between source and destination, leaving it untouched", logging.Fields{
			"source": e.source.FullPath(filepath.Join(dir, name)),
			"dest":   e.dest.FullPath(filepath.Join(dir, name)),
		})
	}

	mismatches, failures := e.differ.Diff(ctx, e.source, e.dest, dir, diff.CommonFiles)
	for _, failure := range failures {
		rec := e.newRecord(report, models.ActionUpdate, filepath.Join(dir, failure.Name), false)
		e.finish(ctx, logger, report, rec, 0, failure.Err)
	}

	plan := models.NewMutationPlan(diff, mismatches)

	for _, name := range plan.Updates {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.update(ctx, logger, filepath.Join(dir, name), report)
	}

	destDirs := make(map[string]bool, len(diff.OnlyInDestDirs))
	for _, name := range diff.OnlyInDestDirs {
		destDirs[name] = true
	}
	for _, name := range plan.Deletions {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.remove(ctx, logger, filepath.Join(dir, name), destDirs[name], report)
	}

	for _, name := range plan.Creations {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.create(ctx, logger, filepath.Join(dir, name), report)
	}

	for _, name := range diff.CommonDirs {
		child := filepath.Join(dir, name)
		err := e.syncLevel(ctx, logger, child, report)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return err
		}

		var unreadable *compare.DirectoryUnreadableError
		if !errors.As(err, &unreadable) {
			return err
		}
		report.AddError(unreadable.Path, err)
		logger.Error(ctx, "Skipping unreadable directory for this pass", err, logging.Fields{
			"path": unreadable.Path,
		})
	}

	return nil
}

func (e *Executor) update(ctx context.Context, logger logging.Logger, path string, report *models.PassReport) {
	rec := e.newRecord(report, models.ActionUpdate, path, false)

	var n int64
	var err error
	if !e.dryRun {
		n, err = e.copyFile(ctx, path, nil)
	}
	e.finish(ctx, logger, report, rec, n, err)
}

func (e *Executor) remove(ctx context.Context, logger logging.Logger, path string, isDir bool, report *models.PassReport) {
	rec := e.newRecord(report, models.ActionRemove, path, isDir)
	rec.SourcePath = ""

	var err error
	if !e.dryRun {
		err = e.dest.Remove(ctx, path)
	}
	e.finish(ctx, logger, report, rec, 0, err)
}

func (e *Executor) create(ctx context.Context, logger logging.Logger, path string, report *models.PassReport) {
	info, err := e.source.Stat(ctx, path)
	if err != nil {
		// Vanished since the level was listed
		rec := e.newRecord(report, models.ActionCreate, path, false)
		e.finish(ctx, logger, report, rec, 0, err)
		return
	}

	if info.IsDir {
		e.copyTree(ctx, logger, path, info, report)
		return
	}

	rec := e.newRecord(report, models.ActionCreate, path, false)

	var n int64
	if !e.dryRun {
		n, err = e.copyFile(ctx, path, info)
	}
	e.finish(ctx, logger, report, rec, n, err)
}

func (e *Executor) newRecord(report *models.PassReport, action models.Action, path string, isDir bool) models.ActionRecord {
	return models.ActionRecord{
		PassID:     report.PassID,
		Action:     action,
		SourcePath: e.source.FullPath(path),
		DestPath:   e.dest.FullPath(path),
		IsDir:      isDir,
	}
}

// finish settles the outcome of rec from err and publishes it
func (e *Executor) finish(ctx context.Context, logger logging.Logger, report *models.PassReport, rec models.ActionRecord, n int64, err error) {
	rec.Timestamp = time.Now()

	switch {
	case err != nil:
		rec.Outcome = models.OutcomeSkipped
		rec.Reason = skipReason(err)
		logger.Error(ctx, rec.String(), err, logging.Fields{"action": string(rec.Action)})
	case e.dryRun:
		rec.Outcome = models.OutcomePlanned
		logger.Debug(ctx, rec.String(), logging.Fields{"action": string(rec.Action), "dry_run": true})
	default:
		rec.Outcome = models.OutcomeApplied
		rec.Bytes = n
		logger.Info(ctx, rec.String(), logging.Fields{"action": string(rec.Action)})
	}

	report.Add(rec)
	if e.formatter != nil {
		e.formatter.Record(rec)
	}
}
