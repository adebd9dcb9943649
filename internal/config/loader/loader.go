// Package loader provides the byte sources and sinks of configuration
// documents: the local file system, remote templates fetched over HTTP and
// atomic file replacement.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Fetcher retrieves a whole document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// Describe names a fetcher's source for logs and change events.
func Describe(f Fetcher) string {
	if s, ok := f.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", f)
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
	// WriteFile replaces the file at path with data.
	WriteFile(path string, data []byte) error
}

// OSFS implements FileSystem using the real OS file system.
// Writes are atomic.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// WriteFile atomically replaces the file at path.
func (OSFS) WriteFile(path string, data []byte) error {
	return WriteFileAtomic(path, data, 0o644)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Exists reports whether path exists in fsys.
func Exists(fsys FileSystem, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// ReadDocument reads the document at path.
// Returns nil, nil if the file doesn't exist (not an error).
func ReadDocument(fsys FileSystem, path string) ([]byte, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return data, nil
}

// FileFetcher fetches a document from a file.
type FileFetcher struct {
	fs   FileSystem
	path string
}

// NewFileFetcher creates a fetcher for path on the OS file system.
func NewFileFetcher(path string) *FileFetcher {
	return NewFileFetcherWithFS(DefaultFS(), path)
}

// NewFileFetcherWithFS creates a fetcher with a custom file system.
func NewFileFetcherWithFS(fsys FileSystem, path string) *FileFetcher {
	return &FileFetcher{fs: fsys, path: path}
}

// Fetch reads the file. A missing file is ErrNotFound.
func (f *FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := ReadDocument(f.fs, f.path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, f.path)
	}
	return data, nil
}

// String returns the file path.
func (f *FileFetcher) String() string { return f.path }
