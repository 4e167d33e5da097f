package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/dirmirror/internal/platform"
	"github.com/sdejongh/dirmirror/pkg/config"
	"github.com/sdejongh/dirmirror/pkg/logging"
	"github.com/sdejongh/dirmirror/pkg/models"
	"github.com/sdejongh/dirmirror/pkg/output"
)

// maxIntervalSeconds is the longest interval a time.Duration can hold
const maxIntervalSeconds = int64(math.MaxInt64 / int64(time.Second))

// stderr receives console logs. Tests swap it.
var stderr io.Writer = os.Stderr

// validateMirrorFlags validates the mirror command flags. Directory
// preconditions are checked by the driver.
func validateMirrorFlags(needInterval bool) error {
	if needInterval && mirrorFlags.Interval < 1 {
		return fmt.Errorf("interval must be a positive number of seconds: %d", mirrorFlags.Interval)
	}
	if int64(mirrorFlags.Interval) > maxIntervalSeconds {
		return fmt.Errorf("interval too large: %d (max %d seconds)", mirrorFlags.Interval, maxIntervalSeconds)
	}

	if mirrorFlags.Output != "" && mirrorFlags.Output != "human" && mirrorFlags.Output != "json" {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", mirrorFlags.Output)
	}

	if mirrorFlags.DiffFormat != "" && mirrorFlags.DiffFormat != "human" && mirrorFlags.DiffFormat != "json" {
		return fmt.Errorf("invalid differences report format: %s (valid: human, json)", mirrorFlags.DiffFormat)
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	return config.Load(globalFlags.ConfigFile)
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) error {
	if mirrorFlags.BufferSize > 0 {
		cfg.Mirror.BufferSize = mirrorFlags.BufferSize
	}

	if mirrorFlags.Watch {
		cfg.Mirror.Watch = true
	}

	if mirrorFlags.Output != "" {
		cfg.Output.Format = mirrorFlags.Output
	}

	if globalFlags.Quiet {
		cfg.Output.Quiet = true
	}

	// Logging
	if mirrorFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = mirrorFlags.LogFile
	}
	if mirrorFlags.NoLog {
		cfg.Logging.Enabled = false
	}
	if mirrorFlags.LogFormat != "" {
		cfg.Logging.Format = mirrorFlags.LogFormat
	}
	if mirrorFlags.LogLevel != "" {
		cfg.Logging.Level = mirrorFlags.LogLevel
	}
	if globalFlags.Verbose {
		cfg.Logging.Level = "debug"
	}

	return cfg.Validate()
}

// createMirrorOperation creates a mirror operation from configuration
func createMirrorOperation(cfg *config.Config, maxPasses int, dryRun bool) (*models.MirrorOperation, error) {
	source, err := platform.NormalizePath(mirrorFlags.Source)
	if err != nil {
		return nil, fmt.Errorf("invalid source path: %w", err)
	}

	dest, err := platform.NormalizePath(mirrorFlags.Dest)
	if err != nil {
		return nil, fmt.Errorf("invalid destination path: %w", err)
	}

	operation := &models.MirrorOperation{
		ID:         uuid.New().String(),
		SourcePath: source,
		DestPath:   dest,
		Interval:   time.Duration(mirrorFlags.Interval) * time.Second,
		BufferSize: cfg.Mirror.BufferSize,
		Watch:      cfg.Mirror.Watch,
		MaxPasses:  maxPasses,
		DryRun:     dryRun,
		CreatedAt:  time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// createLogger creates a logger based on configuration. With the log file
// disabled, --verbose still sends debug logs to stderr.
func createLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled {
		if globalFlags.Verbose {
			return logging.NewConsoleLogger(stderr, logging.ParseFormat(cfg.Logging.Format), logging.DebugLevel), nil
		}
		return logging.NewNullLogger(), nil
	}

	path, err := platform.NormalizePath(cfg.Logging.File)
	if err != nil {
		return nil, fmt.Errorf("invalid log file path: %w", err)
	}

	logger, err := logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       path,
		Format:     logging.ParseFormat(cfg.Logging.Format),
		Level:      logging.ParseLevel(cfg.Logging.Level),
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// createFormatter creates the output formatter for stdout
func createFormatter(cfg *config.Config) output.Formatter {
	return output.New(cfg.Output.Format, os.Stdout, cfg.Output.Quiet)
}
