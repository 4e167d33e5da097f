package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Local is a filesystem-based storage backend
type Local struct {
	fs       afero.Fs
	rootPath string
}

// NewLocal creates a new backend on the operating system filesystem
func NewLocal(rootPath string) (*Local, error) {
	return NewLocalFs(afero.NewOsFs(), rootPath)
}

// NewLocalFs creates a new backend rooted at rootPath on fs.
// The root must exist and be a directory.
func NewLocalFs(fs afero.Fs, rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := fs.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{fs: fs, rootPath: absPath}, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// FullPath resolves path against the root
func (l *Local) FullPath(path string) string {
	return filepath.Join(l.rootPath, path)
}

// ReadDir lists the immediate entries of a directory.
// Symbolic links are classified by what they point to.
func (l *Local) ReadDir(ctx context.Context, path string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath := l.FullPath(path)
	infos, err := afero.ReadDir(l.fs, fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]FileInfo, 0, len(infos))
	for _, info := range infos {
		entryPath := filepath.Join(fullPath, info.Name())

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := l.fs.Stat(entryPath)
			if err != nil {
				// Dangling link: keep the link's own info
				target = info
			}
			info = target
		}

		entries = append(entries, l.toFileInfo(info.Name(), filepath.Join(path, info.Name()), info))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := l.fs.Open(l.FullPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Write creates or overwrites a file. The content goes to a temporary file
// next to the target which is renamed over it once complete, so a failed
// copy leaves the previous content in place and a read-only target can
// still be replaced.
func (l *Local) Write(ctx context.Context, path string, reader io.Reader, metadata *FileInfo) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fullPath := l.FullPath(path)
	dir := filepath.Dir(fullPath)

	// Ensure parent directory exists
	if err := l.fs.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := afero.TempFile(l.fs, dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := file.Name()

	written, err := l.writeTemp(file, tmpPath, reader, metadata)
	if err != nil {
		l.fs.Remove(tmpPath)
		return written, err
	}

	if err := l.fs.Rename(tmpPath, fullPath); err != nil {
		l.fs.Remove(tmpPath)
		return written, fmt.Errorf("failed to replace file: %w", err)
	}

	return written, nil
}

// writeTemp fills and closes file, then applies metadata to it
func (l *Local) writeTemp(file afero.File, tmpPath string, reader io.Reader, metadata *FileInfo) (int64, error) {
	written, err := io.Copy(file, reader)
	if err != nil {
		file.Close()
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	if metadata != nil && metadata.Size != written {
		file.Close()
		return written, fmt.Errorf("incomplete write: expected %d bytes, wrote %d", metadata.Size, written)
	}

	if err := file.Close(); err != nil {
		return written, fmt.Errorf("failed to close file: %w", err)
	}

	perm := os.FileMode(0644)
	if metadata != nil && metadata.Permissions != 0 {
		perm = os.FileMode(metadata.Permissions)
	}
	if err := l.fs.Chmod(tmpPath, perm); err != nil {
		return written, fmt.Errorf("failed to set permissions: %w", err)
	}

	if metadata != nil && !metadata.ModTime.IsZero() {
		if err := l.fs.Chtimes(tmpPath, metadata.ModTime, metadata.ModTime); err != nil {
			return written, fmt.Errorf("failed to set modification time: %w", err)
		}
	}

	return written, nil
}

// Remove deletes a file, or a directory tree
func (l *Local) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := l.FullPath(path)

	// A link is removed itself, never what it points to
	info, err := l.lstat(fullPath)
	if err != nil {
		return fmt.Errorf("failed to stat: %w", err)
	}

	if info.IsDir() {
		err = l.fs.RemoveAll(fullPath)
	} else {
		err = l.fs.Remove(fullPath)
	}
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	return nil
}

func (l *Local) lstat(fullPath string) (os.FileInfo, error) {
	if lstater, ok := l.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(fullPath)
		return info, err
	}
	return l.fs.Stat(fullPath)
}

// Stat returns entry metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := l.fs.Stat(l.FullPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	fi := l.toFileInfo(info.Name(), path, info)
	return &fi, nil
}

// Mkdir creates a single directory. The owner always gets full access so
// the directory can be populated; call SetMetadata once it is filled in.
func (l *Local) Mkdir(ctx context.Context, path string, metadata *FileInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	perm := os.FileMode(0755)
	if metadata != nil && metadata.Permissions != 0 {
		perm = os.FileMode(metadata.Permissions) | 0700
	}

	if err := l.fs.Mkdir(l.FullPath(path), perm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return nil
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(ctx context.Context, path string) error {
	if err := l.fs.MkdirAll(l.FullPath(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return nil
}

// SetMetadata preserves modification time and permissions
func (l *Local) SetMetadata(ctx context.Context, path string, metadata *FileInfo) error {
	if metadata == nil {
		return nil
	}

	fullPath := l.FullPath(path)

	if !metadata.ModTime.IsZero() {
		if err := l.fs.Chtimes(fullPath, metadata.ModTime, metadata.ModTime); err != nil {
			return fmt.Errorf("failed to set modification time: %w", err)
		}
	}

	if metadata.Permissions != 0 {
		if err := l.fs.Chmod(fullPath, os.FileMode(metadata.Permissions)); err != nil {
			return fmt.Errorf("failed to set permissions: %w", err)
		}
	}

	return nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

func (l *Local) toFileInfo(name, relPath string, info os.FileInfo) FileInfo {
	return FileInfo{
		Name:         name,
		Path:         l.FullPath(relPath),
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
		Permissions:  uint32(info.Mode().Perm()),
		RelativePath: filepath.Clean(relPath),
	}
}
