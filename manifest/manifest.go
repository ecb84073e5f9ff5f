// Package manifest records what a training run produced: how many
// rounds ran, with which weights and seed, and which snapshot artifacts
// belong to which round. Batch prediction replays a run from it.
package manifest

import (
	"context"
	"fmt"
	"time"

	"github.com/akreshuk/autocontext/blobstore"
	"github.com/akreshuk/autocontext/codec"
)

const (
	// FileName is the manifest's blob name inside the artifact store.
	FileName = "manifest.json"

	// CurrentVersion is written to new manifests.
	CurrentVersion = 1
)

// Manifest describes one completed (or in-progress) autocontext run.
type Manifest struct {
	Version     int       `json:"version"`
	Codec       string    `json:"codec"`
	Rounds      int       `json:"rounds"`
	Weights     []float64 `json:"weights"`
	Seed        *int64    `json:"seed,omitempty"`
	Compression string    `json:"compression"`
	Snapshots   []string  `json:"snapshots"`
	CreatedAt   time.Time `json:"created_at"`
}

// Save writes the manifest to the store, stamping version and codec name.
func Save(ctx context.Context, store blobstore.Store, c codec.Codec, m *Manifest) error {
	if c == nil {
		c = codec.Default
	}
	m.Version = CurrentVersion
	m.Codec = c.Name()

	data, err := c.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: encoding: %w", err)
	}
	return store.Put(ctx, FileName, data)
}

// Load reads and validates the manifest from the store.
func Load(ctx context.Context, store blobstore.Store) (*Manifest, error) {
	data, err := blobstore.ReadAll(ctx, store, FileName)
	if err != nil {
		return nil, err
	}

	// Peek the codec name with the default codec; manifests are
	// self-describing.
	var head struct {
		Version int    `json:"version"`
		Codec   string `json:"codec"`
	}
	if err := codec.Default.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("manifest: decoding header: %w", err)
	}
	if head.Version != CurrentVersion {
		return nil, fmt.Errorf("manifest: unsupported version %d", head.Version)
	}
	c, ok := codec.ByName(head.Codec)
	if !ok {
		return nil, fmt.Errorf("manifest: unknown codec %q", head.Codec)
	}

	var m Manifest
	if err := c.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decoding: %w", err)
	}
	if m.Rounds != len(m.Snapshots) {
		return nil, fmt.Errorf("manifest: %d rounds but %d snapshots", m.Rounds, len(m.Snapshots))
	}
	return &m, nil
}
