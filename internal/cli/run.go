package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirmirror/pkg/compare"
	"github.com/sdejongh/dirmirror/pkg/fswatch"
	"github.com/sdejongh/dirmirror/pkg/logging"
	"github.com/sdejongh/dirmirror/pkg/sync"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Mirror a directory on an interval",
		Long: `Mirror the source directory into the destination directory, then wait
for the interval and mirror again, until interrupted. The destination is
created if it does not exist. Files and directories that exist only in the
destination are removed.`,
		Example: "  dirmirror run -s ~/documents -d /mnt/backup/documents -i 60",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMirror(cmd, 0)
		},
	}

	addPairFlags(cmd)
	cmd.Flags().IntVarP(&mirrorFlags.Interval, "interval", "i", 0, "seconds to wait between passes (required)")
	cmd.MarkFlagRequired("interval")
	cmd.Flags().BoolVarP(&mirrorFlags.Watch, "watch", "w", false, "start a pass early when the source changes")
	addOutputFlags(cmd)

	return cmd
}

// NewOnceCommand creates the once command
func NewOnceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Mirror a directory once",
		Long:  `Run a single mirror pass from the source directory into the destination directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMirror(cmd, 1)
		},
	}

	addPairFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}

func runMirror(cmd *cobra.Command, maxPasses int) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags
	if err := validateMirrorFlags(maxPasses != 1); err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create mirror operation
	operation, err := createMirrorOperation(cfg, maxPasses, false)
	if err != nil {
		return fmt.Errorf("failed to create mirror operation: %w", err)
	}

	// Create logger
	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	comparator := compare.NewBinaryComparator(operation.BufferSize)
	formatter := createFormatter(cfg)

	opts := []sync.Option{}
	if operation.Watch && maxPasses != 1 {
		watcher, err := fswatch.Watch(ctx, operation.SourcePath, logger)
		if err != nil {
			// Interval-driven passes still work without the watcher
			logger.Warn(ctx, "Source watcher unavailable", logging.Fields{"error": err.Error()})
			formatter.Error(fmt.Errorf("watch disabled: %w", err))
		} else {
			defer watcher.Close()
			opts = append(opts, sync.WithTrigger(watcher.Trigger()))
		}
	}

	driver := sync.NewDriver(operation, comparator, formatter, logger, opts...)
	if err := driver.Run(ctx); err != nil {
		logger.Error(ctx, "Mirroring aborted", err, nil)
		return err
	}

	return nil
}
