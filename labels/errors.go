package labels

import (
	"errors"
	"fmt"
)

var (
	// ErrSplitCount is returned when the requested number of splits is not positive.
	ErrSplitCount = errors.New("split count must be at least 1")

	// ErrPoolInvariant signals a bug in the draw schedule: a class pool
	// went negative or was left non-empty after the final draw. It is
	// never a user error and must be treated as fatal.
	ErrPoolInvariant = errors.New("class pool invariant violated")
)

// WeightCountError indicates that fewer weights were declared than splits requested.
type WeightCountError struct {
	Weights int
	Splits  int
}

func (e *WeightCountError) Error() string {
	return fmt.Sprintf("number of weights (%d) must not be smaller than the number of splits (%d)", e.Weights, e.Splits)
}

// WeightValueError indicates a non-positive weight.
type WeightValueError struct {
	Index  int
	Weight float64
}

func (e *WeightValueError) Error() string {
	return fmt.Sprintf("weight %d must be positive, got %v", e.Index, e.Weight)
}

// PoolInvariantError reports which class pool violated the draw-schedule
// invariant. It unwraps to ErrPoolInvariant.
type PoolInvariantError struct {
	Class     uint8
	Remaining int
}

func (e *PoolInvariantError) Error() string {
	return fmt.Sprintf("class %d pool left with %d unassigned voxels after the final draw", e.Class, e.Remaining)
}

func (e *PoolInvariantError) Unwrap() error { return ErrPoolInvariant }
