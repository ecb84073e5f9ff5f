package project

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/akreshuk/autocontext/labels"
	"github.com/akreshuk/autocontext/volume"
)

// Memory is an in-memory Store used by tests and examples. It also
// serves as the handoff point for in-process classifier runners, which
// install their predictions via SetProbabilities.
type Memory struct {
	mu         sync.RWMutex
	labelCount int
	datasets   []*memoryDataset
}

type memoryDataset struct {
	raw    *volume.Volume
	blocks []*labels.Block
	probs  *volume.Volume
}

// NewMemory creates an empty in-memory project with the given class count.
func NewMemory(labelCount int) *Memory {
	return &Memory{labelCount: labelCount}
}

// AddDataset appends a dataset with its raw volume and label blocks and
// returns its positional index.
func (m *Memory) AddDataset(raw *volume.Volume, blocks []*labels.Block) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets = append(m.datasets, &memoryDataset{raw: raw, blocks: blocks})
	return len(m.datasets) - 1
}

// SetProbabilities installs a prediction result for a dataset.
func (m *Memory) SetProbabilities(nr int, v *volume.Volume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, err := m.dataset(nr)
	if err != nil {
		return err
	}
	ds.probs = v
	return nil
}

func (m *Memory) dataset(nr int) (*memoryDataset, error) {
	if nr < 0 || nr >= len(m.datasets) {
		return nil, fmt.Errorf("project: no dataset %d (have %d)", nr, len(m.datasets))
	}
	return m.datasets[nr], nil
}

// DataCount returns the number of datasets.
func (m *Memory) DataCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.datasets)
}

// LabelCount returns the number of label classes.
func (m *Memory) LabelCount() int {
	return m.labelCount
}

// Labels returns the label blocks of a dataset.
func (m *Memory) Labels(_ context.Context, nr int) ([]*labels.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, err := m.dataset(nr)
	if err != nil {
		return nil, err
	}
	out := make([]*labels.Block, len(ds.blocks))
	for i, b := range ds.blocks {
		out[i] = b.Clone()
	}
	return out, nil
}

// ReplaceLabels swaps in replacement blocks keyed by positional index.
func (m *Memory) ReplaceLabels(_ context.Context, nr int, blocks []*labels.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, err := m.dataset(nr)
	if err != nil {
		return err
	}
	if len(blocks) != len(ds.blocks) {
		return fmt.Errorf("project: wrong number of label blocks for dataset %d: got %d, want %d", nr, len(blocks), len(ds.blocks))
	}
	for i, b := range blocks {
		if !b.SameShape(ds.blocks[i]) {
			return fmt.Errorf("project: label block %d shape mismatch for dataset %d", i, nr)
		}
	}
	ds.blocks = blocks
	return nil
}

// ChannelCount returns the dataset's current channel count.
func (m *Memory) ChannelCount(_ context.Context, nr int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, err := m.dataset(nr)
	if err != nil {
		return 0, err
	}
	return ds.raw.Channels(), nil
}

// Raw returns the dataset's raw volume.
func (m *Memory) Raw(_ context.Context, nr int) (*volume.Volume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, err := m.dataset(nr)
	if err != nil {
		return nil, err
	}
	return ds.raw, nil
}

// ReplaceRaw swaps the dataset's raw volume.
func (m *Memory) ReplaceRaw(_ context.Context, nr int, v *volume.Volume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, err := m.dataset(nr)
	if err != nil {
		return err
	}
	ds.raw = v
	return nil
}

// Probabilities returns the most recently installed prediction.
func (m *Memory) Probabilities(_ context.Context, nr int) (*volume.Volume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, err := m.dataset(nr)
	if err != nil {
		return nil, err
	}
	if ds.probs == nil {
		return nil, fmt.Errorf("project: no probabilities for dataset %d, predict first", nr)
	}
	return ds.probs, nil
}

// ExtendTZYXC reshapes every dataset to canonical axis order.
func (m *Memory) ExtendTZYXC(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ds := range m.datasets {
		ds.raw = volume.ReshapeTZYXC(ds.raw)
	}
	return nil
}

// Snapshot serializes every dataset's raw volume. Good enough for an
// in-memory project; real project stores persist their native format.
func (m *Memory) Snapshot(_ context.Context, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ds := range m.datasets {
		if _, err := ds.raw.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// Ref returns an opaque in-memory locator.
func (m *Memory) Ref() string {
	return "mem://project"
}

var _ Store = (*Memory)(nil)
