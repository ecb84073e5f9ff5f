package labels

import (
	"math"
	"math/rand"
	"time"
)

// Options represents the options for configuring a Scatterer.
type Options struct {
	// Weights is the relative share of labels each round should receive.
	// Round k takes Weights[k] / sum(Weights[k:]) of the labels still
	// unassigned when it runs. Nil means equal shares. At least as many
	// weights as splits must be given; extra weights are ignored.
	Weights []float64

	// RandomSeed pins the random source for reproducible scatters.
	// If nil, a time-based seed is used and every scatter is independent.
	RandomSeed *int64
}

// DefaultOptions are the options used when none are given: equal weights,
// time-based seed.
var DefaultOptions = Options{}

// Scatterer partitions the labeled voxels of blocks into N disjoint,
// class-balanced rounds.
//
// A Scatterer is a sequential sampler: it owns a single random source,
// so it must not be shared across goroutines. Scattering itself is a
// pure in-memory computation, linear in the number of labeled voxels.
type Scatterer struct {
	rng     *rand.Rand
	weights []float64
}

// New creates a new Scatterer.
func New(optFns ...func(o *Options)) *Scatterer {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	var rng *rand.Rand
	if opts.RandomSeed != nil {
		rng = rand.New(rand.NewSource(*opts.RandomSeed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Scatterer{
		rng:     rng,
		weights: append([]float64(nil), opts.Weights...),
	}
}

// schedule resolves the per-round draw fractions for the given split
// count. Fraction k applies to whatever is left in a pool when round k
// runs; the last fraction is always 1 so pools empty exactly.
func (s *Scatterer) schedule(splits int) ([]float64, error) {
	if splits < 1 {
		return nil, ErrSplitCount
	}
	weights := s.weights
	if len(weights) == 0 {
		weights = make([]float64, splits)
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) < splits {
		return nil, &WeightCountError{Weights: len(weights), Splits: splits}
	}
	weights = weights[:splits]

	for i, w := range weights {
		if w <= 0 {
			return nil, &WeightValueError{Index: i, Weight: w}
		}
	}

	fractions := make([]float64, splits)
	tail := 0.0
	for k := splits - 1; k >= 0; k-- {
		tail += weights[k]
		fractions[k] = weights[k] / tail
	}
	return fractions, nil
}

// ScatterBlock splits the labeled voxels of one block into splits
// disjoint groups. Each class c in 1..labelCount is sampled
// independently: round k draws ceil(|pool| * f_k) voxels uniformly
// without replacement from the class's remaining pool, where f_k is the
// round's weight-derived fraction. Rounding up guarantees every pool is
// empty after the final draw.
//
// The input block is read-only; the outputs are fresh blocks of the same
// shape, each holding only the labels assigned to its round.
func (s *Scatterer) ScatterBlock(block *Block, labelCount, splits int) ([]*Block, error) {
	fractions, err := s.schedule(splits)
	if err != nil {
		return nil, err
	}

	pools := make([]*classPool, labelCount)
	for c := 0; c < labelCount; c++ {
		pools[c] = newClassPool(block, uint8(c+1))
	}

	out := make([]*Block, splits)
	for k := 0; k < splits; k++ {
		round := &Block{
			shape: block.Shape(),
			data:  make([]uint8, block.Len()),
		}
		for c := 0; c < labelCount; c++ {
			take := int(math.Ceil(float64(pools[c].size()) * fractions[k]))
			chosen, next := pools[c].draw(s.rng, take)
			pools[c] = next
			for _, idx := range chosen {
				round.data[idx] = uint8(c + 1)
			}
		}
		out[k] = round
	}

	for c, pool := range pools {
		if pool.size() != 0 {
			return nil, &PoolInvariantError{Class: uint8(c + 1), Remaining: pool.size()}
		}
	}
	return out, nil
}

// Scatter applies ScatterBlock to every block of one dataset and regroups
// the results by round: result[k][i] is block i's share of round k. The
// per-block scatters are independent; labels never move between blocks.
//
// A failure on any block aborts the whole scatter without partial results.
func (s *Scatterer) Scatter(blocks []*Block, labelCount, splits int) ([][]*Block, error) {
	if _, err := s.schedule(splits); err != nil {
		return nil, err
	}

	out := make([][]*Block, splits)
	for k := range out {
		out[k] = make([]*Block, 0, len(blocks))
	}
	for _, block := range blocks {
		rounds, err := s.ScatterBlock(block, labelCount, splits)
		if err != nil {
			return nil, err
		}
		for k, b := range rounds {
			out[k] = append(out[k], b)
		}
	}
	return out, nil
}
