package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirmirror/pkg/compare"
	"github.com/sdejongh/dirmirror/pkg/models"
	"github.com/sdejongh/dirmirror/pkg/output"
	"github.com/sdejongh/dirmirror/pkg/sync"
)

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Show what a mirror pass would do (dry-run)",
		Long: `Compare source and destination folders and report the actions a mirror
pass would take without performing any file operations. The destination must
already exist.`,
		RunE: runCompare,
	}

	addPairFlags(cmd)
	addOutputFlags(cmd)
	cmd.Flags().StringVar(&mirrorFlags.DiffReport, "diff-report", "", "write differences report to file")
	cmd.Flags().StringVar(&mirrorFlags.DiffFormat, "diff-format", "human", "differences report format: human, json")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags
	if err := validateMirrorFlags(false); err != nil {
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

	// Create mirror operation (with dry-run enabled)
	operation, err := createMirrorOperation(cfg, 1, true)
	if err != nil {
		return fmt.Errorf("failed to create mirror operation: %w", err)
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	var report *models.PassReport
	driver := sync.NewDriver(
		operation,
		compare.NewBinaryComparator(operation.BufferSize),
		createFormatter(cfg),
		logger,
		sync.WithPassHook(func(r *models.PassReport) { report = r }),
	)

	// Run comparison (dry-run pass)
	if err := driver.Run(ctx); err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	// Write differences report if requested
	if mirrorFlags.DiffReport != "" && report != nil {
		if err := output.WriteDifferencesReport(report, mirrorFlags.DiffReport, mirrorFlags.DiffFormat); err != nil {
			return fmt.Errorf("failed to write differences report: %w", err)
		}
	}

	return nil
}
