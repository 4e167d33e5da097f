package sync

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/sdejongh/dirmirror/internal/platform"
	"github.com/sdejongh/dirmirror/pkg/compare"
	"github.com/sdejongh/dirmirror/pkg/logging"
	"github.com/sdejongh/dirmirror/pkg/models"
	"github.com/sdejongh/dirmirror/pkg/output"
	"github.com/sdejongh/dirmirror/pkg/storage"
)

var (
	// ErrSourceMissing is returned when the source is absent or not a directory
	ErrSourceMissing = errors.New("source directory does not exist")

	// ErrDestUncreatable is returned when the destination cannot be created
	ErrDestUncreatable = errors.New("destination directory can not be created")

	// ErrDestNotDirectory is returned when the destination exists as a file
	ErrDestNotDirectory = errors.New("destination exists and is not a directory")

	// ErrDestMissing is returned by a dry run whose destination does not exist
	ErrDestMissing = errors.New("destination directory does not exist")

	// ErrNestedPaths is returned when source and destination overlap
	ErrNestedPaths = errors.New("source and destination must not be the same or nested")
)

// Driver repeats mirror passes on an interval until cancelled
type Driver struct {
	operation  *models.MirrorOperation
	comparator compare.Comparator
	formatter  output.Formatter
	logger     logging.Logger

	fs       afero.Fs
	clock    clockwork.Clock
	trigger  <-chan struct{}
	passHook func(*models.PassReport)
}

// Option configures a Driver
type Option func(*Driver)

// WithFs runs the driver against fs instead of the operating system
func WithFs(fs afero.Fs) Option {
	return func(d *Driver) { d.fs = fs }
}

// WithClock sets the clock used for the wait between passes
func WithClock(clock clockwork.Clock) Option {
	return func(d *Driver) { d.clock = clock }
}

// WithTrigger wakes the wait early whenever trigger receives
func WithTrigger(trigger <-chan struct{}) Option {
	return func(d *Driver) { d.trigger = trigger }
}

// WithPassHook calls hook with the report of every finished pass
func WithPassHook(hook func(*models.PassReport)) Option {
	return func(d *Driver) { d.passHook = hook }
}

// NewDriver creates a new driver. formatter and logger may be nil.
func NewDriver(
	operation *models.MirrorOperation,
	comparator compare.Comparator,
	formatter output.Formatter,
	logger logging.Logger,
	opts ...Option,
) *Driver {
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	d := &Driver{
		operation:  operation,
		comparator: comparator,
		formatter:  formatter,
		logger:     logger,
		fs:         afero.NewOsFs(),
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Prepare checks the preconditions of the operation, creates the
// destination when needed and returns an executor for the pair.
// Every error it returns is fatal.
func (d *Driver) Prepare(ctx context.Context) (*Executor, error) {
	op := d.operation
	if err := op.Validate(); err != nil {
		return nil, fmt.Errorf("invalid operation: %w", err)
	}

	info, err := d.fs.Stat(op.SourcePath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, op.SourcePath)
	}

	if platform.SamePath(op.SourcePath, op.DestPath) ||
		platform.IsNested(op.SourcePath, op.DestPath) ||
		platform.IsNested(op.DestPath, op.SourcePath) {
		return nil, fmt.Errorf("%w: %s and %s", ErrNestedPaths, op.SourcePath, op.DestPath)
	}

	info, err = d.fs.Stat(op.DestPath)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrDestNotDirectory, op.DestPath)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s: %v", ErrDestUncreatable, op.DestPath, err)
	case err != nil && op.DryRun:
		return nil, fmt.Errorf("%w: %s", ErrDestMissing, op.DestPath)
	case err != nil:
		if err := d.fs.MkdirAll(op.DestPath, 0755); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDestUncreatable, op.DestPath, err)
		}
		d.logger.Info(ctx, "Created destination directory", logging.Fields{"path": op.DestPath})
	}

	source, err := storage.NewLocalFs(d.fs, op.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceMissing, err)
	}
	dest, err := storage.NewLocalFs(d.fs, op.DestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDestUncreatable, err)
	}

	executor := NewExecutor(source, dest, d.comparator, d.formatter, d.logger)
	executor.SetDryRun(op.DryRun)
	return executor, nil
}

// Run mirrors the pair until ctx is cancelled or MaxPasses passes have
// run. Cancellation is a clean stop and returns nil; only precondition
// failures are returned.
func (d *Driver) Run(ctx context.Context) error {
	executor, err := d.Prepare(ctx)
	if err != nil {
		return err
	}

	d.logger.Info(ctx, "Mirroring started", logging.Fields{
		"operation_id": d.operation.ID,
		"source":       d.operation.SourcePath,
		"dest":         d.operation.DestPath,
		"interval":     d.operation.Interval.String(),
	})

	for pass := 1; ; pass++ {
		report := executor.Sync(ctx)
		if d.passHook != nil {
			d.passHook(report)
		}

		if report.Status == models.StatusCancelled || ctx.Err() != nil {
			break
		}
		if d.operation.MaxPasses > 0 && pass >= d.operation.MaxPasses {
			break
		}
		if !d.wait(ctx) {
			break
		}
	}

	d.logger.Info(ctx, "Mirroring stopped", logging.Fields{"operation_id": d.operation.ID})
	return nil
}

// wait blocks for the interval, or until the trigger fires. It returns
// false when ctx is done.
func (d *Driver) wait(ctx context.Context) bool {
	timer := d.clock.NewTimer(d.operation.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	case <-d.trigger:
		d.logger.Debug(ctx, "Source changed, starting pass early", nil)
		return true
	}
}
