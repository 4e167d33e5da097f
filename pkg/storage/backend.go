package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a directory entry
type FileInfo struct {
	Name         string
	Path         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	Permissions  uint32
	RelativePath string
}

// Backend defines the interface for storage operations.
// Paths passed to a Backend are relative to its root.
type Backend interface {
	// Root returns the absolute root path of the backend
	Root() string

	// FullPath resolves a relative path against the root
	FullPath(path string) string

	// ReadDir returns the immediate entries of a directory, sorted by name
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or overwrites a file with the given content and returns
	// the number of bytes written.
	// If metadata is provided, timestamps and permissions are preserved.
	Write(ctx context.Context, path string, reader io.Reader, metadata *FileInfo) (int64, error)

	// Remove deletes a file, or a directory and everything below it
	Remove(ctx context.Context, path string) error

	// Stat returns entry metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Mkdir creates a single directory with the permissions from metadata
	Mkdir(ctx context.Context, path string, metadata *FileInfo) error

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// SetMetadata applies modification time and permissions to an entry
	SetMetadata(ctx context.Context, path string, metadata *FileInfo) error

	// Close releases any resources held by the backend
	Close() error
}
