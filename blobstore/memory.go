package blobstore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory Store implementation for testing. Thread-safe
// for concurrent reads and writes.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates a new in-memory blob store.
func NewMemory() *Memory {
	return &Memory{
		blobs: make(map[string][]byte),
	}
}

// Open opens a blob for reading.
func (m *Memory) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy so later writes never mutate an open reader.
	copied := make([]byte, len(data))
	copy(copied, data)
	return &memoryBlob{r: bytes.NewReader(copied), size: int64(len(copied))}, nil
}

// Create creates a blob for streaming writes.
func (m *Memory) Create(_ context.Context, name string) (WritableBlob, error) {
	return &memoryWritableBlob{store: m, name: name}, nil
}

// Put writes a blob atomically.
func (m *Memory) Put(_ context.Context, name string, data []byte) error {
	copied := make([]byte, len(data))
	copy(copied, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = copied
	return nil
}

// Delete removes a blob.
func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, name)
	return nil
}

// List returns all blob names with the given prefix, sorted.
func (m *Memory) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type memoryBlob struct {
	r    *bytes.Reader
	size int64
}

func (b *memoryBlob) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *memoryBlob) Close() error               { return nil }
func (b *memoryBlob) Size() int64                { return b.size }

type memoryWritableBlob struct {
	store *Memory
	name  string
	buf   bytes.Buffer
}

func (w *memoryWritableBlob) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memoryWritableBlob) Close() error {
	return w.store.Put(context.Background(), w.name, w.buf.Bytes())
}
