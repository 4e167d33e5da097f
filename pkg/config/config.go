package config

import (
	"github.com/sdejongh/dirmirror/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Mirror  MirrorConfig  `yaml:"mirror"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// MirrorConfig holds mirror-related settings
type MirrorConfig struct {
	BufferSize int  `yaml:"buffer_size"` // Content comparison buffer in bytes
	Watch      bool `yaml:"watch"`       // Start a pass early when the source changes
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format string `yaml:"format"` // "human" or "json"
	Quiet  bool   `yaml:"quiet"`  // Only report skipped entries
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	File       string `yaml:"file"`
	Format     string `yaml:"format"` // "json" or "text"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Mirror: MirrorConfig{
			BufferSize: 65536,
			Watch:      false,
		},
		Output: OutputConfig{
			Format: "human",
			Quiet:  false,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			File:       "dirmirror.log",
			Format:     "text",
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 2,
			Compress:   false,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mirror.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "mirror.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.Enabled && c.Logging.File == "" {
		return &models.ValidationError{
			Field:   "logging.file",
			Message: "is required when logging is enabled",
		}
	}

	if c.Logging.MaxSizeMB < 1 {
		return &models.ValidationError{
			Field:   "logging.max_size_mb",
			Message: "must be at least 1",
		}
	}

	if c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_backups",
			Message: "cannot be negative",
		}
	}

	return nil
}
