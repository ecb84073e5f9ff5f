package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and writing named data blobs.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a blob for streaming writes. The blob becomes
	// visible once Close returns.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Reader
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a streaming write handle. Close commits the blob;
// until then readers must not observe it.
type WritableBlob interface {
	io.Writer
	io.Closer
}

// ReadAll is a convenience helper that opens a blob and reads it fully.
func ReadAll(ctx context.Context, s Store, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return io.ReadAll(b)
}
