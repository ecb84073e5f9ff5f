package labels

import (
	"math/rand"

	"github.com/RoaringBitmap/roaring/v2"
)

// classPool is the set of not-yet-assigned flat voxel indices of one
// class within one block. Pools shrink monotonically across rounds.
// draw is copy-on-write: the receiver stays valid, the returned pool is
// the shrunken successor.
type classPool struct {
	bits *roaring.Bitmap
}

// newClassPool collects all voxel indices of the block labeled with the
// given class.
func newClassPool(b *Block, class uint8) *classPool {
	bits := roaring.New()
	for i, v := range b.data {
		if v == class {
			bits.Add(uint32(i))
		}
	}
	return &classPool{bits: bits}
}

// size returns the number of indices still available.
func (p *classPool) size() int {
	return int(p.bits.GetCardinality())
}

// draw picks m distinct indices uniformly at random from the pool. It
// returns the chosen indices and a successor pool with those indices
// removed. If m meets or exceeds the pool size, everything left is drawn.
//
// Selection is a partial Fisher-Yates shuffle over the sorted index
// array, so results are fully determined by the rng state.
func (p *classPool) draw(rng *rand.Rand, m int) ([]uint32, *classPool) {
	if m <= 0 {
		return nil, p
	}
	avail := p.bits.ToArray()
	if m > len(avail) {
		m = len(avail)
	}
	for k := 0; k < m; k++ {
		j := k + rng.Intn(len(avail)-k)
		avail[k], avail[j] = avail[j], avail[k]
	}
	chosen := avail[:m:m]

	next := roaring.New()
	next.AddMany(avail[m:])
	return chosen, &classPool{bits: next}
}
