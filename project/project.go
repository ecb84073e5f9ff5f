// Package project defines the boundary to the pixel-classification
// project that supplies datasets and labeled voxels. How a project is
// laid out on disk is deliberately out of scope; the trainer only
// consumes this interface. Memory is the in-memory reference
// implementation used by tests.
package project

import (
	"context"
	"io"

	"github.com/akreshuk/autocontext/labels"
	"github.com/akreshuk/autocontext/volume"
)

// Store is the dataset and label source for one classification project.
//
// Datasets are addressed by positional index 0..DataCount()-1; label
// blocks keep their positional index across Labels/ReplaceLabels calls.
type Store interface {
	// DataCount returns the number of datasets in the project.
	DataCount() int

	// LabelCount returns the number of label classes K.
	LabelCount() int

	// Labels returns the label blocks of a dataset.
	Labels(ctx context.Context, nr int) ([]*labels.Block, error)

	// ReplaceLabels swaps in replacement blocks keyed by the same
	// positional index. The count and shapes must match the existing
	// blocks exactly.
	ReplaceLabels(ctx context.Context, nr int, blocks []*labels.Block) error

	// ChannelCount returns the current channel count of a dataset's raw
	// data. Channels beyond a dataset's original count hold probability
	// maps folded in by earlier rounds.
	ChannelCount(ctx context.Context, nr int) (int, error)

	// Raw returns a dataset's raw data volume.
	Raw(ctx context.Context, nr int) (*volume.Volume, error)

	// ReplaceRaw swaps a dataset's raw data volume.
	ReplaceRaw(ctx context.Context, nr int, v *volume.Volume) error

	// Probabilities returns the probability volume produced for a
	// dataset by the most recent prediction.
	Probabilities(ctx context.Context, nr int) (*volume.Volume, error)

	// ExtendTZYXC reshapes every dataset to the canonical tzyxc axis
	// order so probability channels can be appended uniformly.
	ExtendTZYXC(ctx context.Context) error

	// Snapshot serializes the project's current state. The trainer
	// stores one snapshot per round so batch prediction can replay the
	// run.
	Snapshot(ctx context.Context, w io.Writer) error

	// Ref returns an opaque locator for the project (e.g. a file path)
	// that is handed to the classifier runner verbatim.
	Ref() string
}
