package labels

import (
	"fmt"
	"math"
)

// Block is an n-dimensional array of per-voxel class ids for one
// rectangular region of a dataset. The value 0 marks a voxel as
// unlabeled; a value c in 1..K marks it as belonging to class c.
// Voxels are stored in row-major order. The shape is immutable after
// construction.
type Block struct {
	shape []int
	data  []uint8
}

// NewBlock returns a zero-filled (fully unlabeled) block with the given shape.
func NewBlock(shape ...int) (*Block, error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	return &Block{
		shape: append([]int(nil), shape...),
		data:  make([]uint8, n),
	}, nil
}

// NewBlockFrom wraps an existing row-major voxel buffer. The buffer is
// not copied; the block takes ownership.
func NewBlockFrom(data []uint8, shape ...int) (*Block, error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("labels: data length %d does not match shape %v (%d voxels)", len(data), shape, n)
	}
	return &Block{
		shape: append([]int(nil), shape...),
		data:  data,
	}, nil
}

func checkShape(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("labels: block shape must have at least one dimension")
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("labels: invalid block dimension %d in shape %v", d, shape)
		}
		if n > math.MaxUint32/d {
			return 0, fmt.Errorf("labels: block shape %v exceeds the 32-bit voxel index space", shape)
		}
		n *= d
	}
	return n, nil
}

// Shape returns a copy of the block's dimensions.
func (b *Block) Shape() []int {
	return append([]int(nil), b.shape...)
}

// NumDims returns the dimensionality of the block.
func (b *Block) NumDims() int {
	return len(b.shape)
}

// Len returns the total number of voxels.
func (b *Block) Len() int {
	return len(b.data)
}

// At returns the class id at the given flat (row-major) voxel index.
func (b *Block) At(i int) uint8 {
	return b.data[i]
}

// Set writes a class id at the given flat voxel index.
func (b *Block) Set(i int, v uint8) {
	b.data[i] = v
}

// Data returns the underlying voxel buffer. The slice is shared with the
// block; callers must not modify it unless they own the block.
func (b *Block) Data() []uint8 {
	return b.data
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	data := make([]uint8, len(b.data))
	copy(data, b.data)
	return &Block{
		shape: append([]int(nil), b.shape...),
		data:  data,
	}
}

// SameShape reports whether two blocks have identical dimensions.
func (b *Block) SameShape(o *Block) bool {
	if len(b.shape) != len(o.shape) {
		return false
	}
	for i, d := range b.shape {
		if d != o.shape[i] {
			return false
		}
	}
	return true
}

// Count returns the number of voxels labeled with the given class.
func (b *Block) Count(class uint8) int {
	n := 0
	for _, v := range b.data {
		if v == class {
			n++
		}
	}
	return n
}
