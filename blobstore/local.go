package blobstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local implements Store on the local filesystem. Blob names may contain
// slashes; intermediate directories are created on demand. Writes go to
// a temp file and are renamed into place on Close, so readers never see
// partial blobs.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at the given directory, creating
// it if necessary.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: creating root %s: %w", root, err)
	}
	return &Local{root: root}, nil
}

// Root returns the store's root directory.
func (s *Local) Root() string {
	return s.root
}

// Path returns the filesystem path a blob name maps to. External tools
// (e.g. a headless classifier) address artifacts through it.
func (s *Local) Path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open opens a blob for reading.
func (s *Local) Open(_ context.Context, name string) (Blob, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &localBlob{f: f, size: info.Size()}, nil
}

// Create creates a blob for streaming writes.
func (s *Local) Create(_ context.Context, name string) (WritableBlob, error) {
	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return nil, err
	}
	return &localWritableBlob{f: tmp, dst: path}, nil
}

// Put writes a blob atomically.
func (s *Local) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Delete removes a blob.
func (s *Local) Delete(_ context.Context, name string) error {
	err := os.Remove(s.Path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns all blob names with the given prefix, sorted.
func (s *Local) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(filepath.Base(name), ".") {
			return nil // in-flight temp files
		}
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

type localBlob struct {
	f    *os.File
	size int64
}

func (b *localBlob) Read(p []byte) (int, error) { return b.f.Read(p) }
func (b *localBlob) Close() error               { return b.f.Close() }
func (b *localBlob) Size() int64                { return b.size }

type localWritableBlob struct {
	f   *os.File
	dst string
}

func (w *localWritableBlob) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *localWritableBlob) Close() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		os.Remove(w.f.Name())
		return err
	}
	if err := w.f.Close(); err != nil {
		os.Remove(w.f.Name())
		return err
	}
	return os.Rename(w.f.Name(), w.dst)
}
