package models

import (
	"time"
)

// MirrorOperation represents a mirror job configuration
type MirrorOperation struct {
	ID         string
	SourcePath string
	DestPath   string
	Interval   time.Duration // wait between the end of a pass and the start of the next
	BufferSize int           // read buffer for content comparison
	Watch      bool          // wake early on source changes
	MaxPasses  int           // 0 = run until cancelled
	DryRun     bool          // report actions without applying them
	CreatedAt  time.Time
}

// Validate checks if the operation configuration is valid
func (op *MirrorOperation) Validate() error {
	if op.SourcePath == "" {
		return &ValidationError{Field: "SourcePath", Message: "source path is required"}
	}
	if op.DestPath == "" {
		return &ValidationError{Field: "DestPath", Message: "destination path is required"}
	}
	if op.Interval < time.Second && op.MaxPasses != 1 {
		return &ValidationError{Field: "Interval", Message: "interval must be at least one second"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	if op.MaxPasses < 0 {
		return &ValidationError{Field: "MaxPasses", Message: "max passes cannot be negative"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
