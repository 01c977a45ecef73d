package documents

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by FileStore when the named document does not exist.
var ErrNotFound = errors.New("document not found")

// FileStore port (interface for document storage backends)
type FileStore interface {
	// Save stores the content under a new timestamped filename and
	// returns the resulting descriptor.
	Save(ctx context.Context, originalName string, r io.Reader, size int64) (FileInfo, error)
	// List returns all stored documents, newest first.
	List(ctx context.Context) ([]FileInfo, error)
	Delete(ctx context.Context, filename string) error
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
}
