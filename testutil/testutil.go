package testutil

import (
	"math/rand"
	"sync"

	"github.com/akreshuk/autocontext/labels"
	"github.com/akreshuk/autocontext/volume"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// SparseBlock generates a label block of the given shape where roughly
// density*len voxels carry a label, spread uniformly over the classes
// 1..classes. The rest stay unlabeled.
func (r *RNG) SparseBlock(density float64, classes int, shape ...int) *labels.Block {
	r.mu.Lock()
	defer r.mu.Unlock()

	block, err := labels.NewBlock(shape...)
	if err != nil {
		panic(err)
	}
	n := int(float64(block.Len()) * density)
	for i := 0; i < n; i++ {
		block.Set(r.rand.Intn(block.Len()), uint8(1+r.rand.Intn(classes)))
	}
	return block
}

// DenseBlock generates a fully labeled block with classes 1..classes.
func (r *RNG) DenseBlock(classes int, shape ...int) *labels.Block {
	r.mu.Lock()
	defer r.mu.Unlock()

	block, err := labels.NewBlock(shape...)
	if err != nil {
		panic(err)
	}
	for i := 0; i < block.Len(); i++ {
		block.Set(i, uint8(1+r.rand.Intn(classes)))
	}
	return block
}

// UniformVolume generates a volume with the given axes and shape filled
// with random values in range [0, 1). Locks only once per call.
func (r *RNG) UniformVolume(axes string, shape ...int) *volume.Volume {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := volume.New(axes, shape...)
	if err != nil {
		panic(err)
	}
	data := v.Data()
	for i := range data {
		data[i] = r.rand.Float32()
	}
	return v
}
