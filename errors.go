package autocontext

import (
	"errors"
	"fmt"

	"github.com/akreshuk/autocontext/labels"
)

var (
	// ErrNilProject is returned when no project store is given.
	ErrNilProject = errors.New("project store must not be nil")

	// ErrNilRunner is returned when no classifier runner is given.
	ErrNilRunner = errors.New("classifier runner must not be nil")

	// ErrInvalidRounds is returned when the round count is not positive.
	ErrInvalidRounds = errors.New("rounds must be at least 1")

	// ErrNoStore is returned by operations that need an artifact store
	// when none was configured.
	ErrNoStore = errors.New("no artifact store configured")

	// ErrLabelDataset is returned when the configured label dataset
	// index does not exist in the project.
	ErrLabelDataset = errors.New("label dataset index out of range")
)

// WeightCountError re-exports the scatterer's weight arity error so
// callers can handle it without importing the labels package.
type WeightCountError = labels.WeightCountError

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, labels.ErrSplitCount) {
		return fmt.Errorf("%w: %w", ErrInvalidRounds, err)
	}

	return err
}
