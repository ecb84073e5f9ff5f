package autocontext

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akreshuk/autocontext/classifier"
	"github.com/akreshuk/autocontext/labels"
	"github.com/akreshuk/autocontext/manifest"
	"github.com/akreshuk/autocontext/project"
	"github.com/akreshuk/autocontext/volume"
)

// Trainer drives the autocontext loop: it scatters the project's labels
// into per-round subsets, retrains the classifier on each subset, and
// folds every round's probability maps back into the datasets as extra
// channels so the next round can learn from them.
type Trainer struct {
	project project.Store
	runner  classifier.Runner
	opts    options
}

// labelSet binds one dataset's original label blocks to their per-round
// scatter.
type labelSet struct {
	nr       int
	original []*labels.Block
	rounds   [][]*labels.Block
}

// New creates a Trainer for the given project and classifier runner.
func New(p project.Store, r classifier.Runner, optFns ...Option) (*Trainer, error) {
	if p == nil {
		return nil, ErrNilProject
	}
	if r == nil {
		return nil, ErrNilRunner
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.rounds < 1 {
		return nil, ErrInvalidRounds
	}
	if len(opts.weights) > 0 && len(opts.weights) < opts.rounds {
		return nil, &WeightCountError{Weights: len(opts.weights), Splits: opts.rounds}
	}
	if opts.labelDataset < AllDatasets {
		return nil, fmt.Errorf("%w: %d", ErrLabelDataset, opts.labelDataset)
	}

	return &Trainer{
		project: p,
		runner:  r,
		opts:    opts,
	}, nil
}

// Run executes the full autocontext loop. Each round replaces the
// project's labels with that round's subset, retrains, snapshots the
// project to the artifact store, predicts all datasets and merges the
// probability channels back in. The original labels are restored after
// the final round.
func (t *Trainer) Run(ctx context.Context) error {
	o := t.opts

	if err := t.project.ExtendTZYXC(ctx); err != nil {
		return fmt.Errorf("autocontext: reshaping datasets: %w", err)
	}

	dataCount := t.project.DataCount()

	// Channels present now are raw data; everything a round appends
	// beyond them is replaced by the next round's probabilities.
	keep := make([]int, dataCount)
	for nr := 0; nr < dataCount; nr++ {
		ch, err := t.project.ChannelCount(ctx, nr)
		if err != nil {
			return err
		}
		keep[nr] = ch
	}

	sets, err := t.scatterLabels(ctx, dataCount)
	if err != nil {
		return err
	}

	snapshots := make([]string, 0, o.rounds)
	for k := 0; k < o.rounds; k++ {
		began := time.Now()
		err := t.runRound(ctx, k, sets, keep, &snapshots)
		o.metrics.RecordRound(k, time.Since(began), err)
		o.logger.LogRound(ctx, k, o.rounds, time.Since(began), err)
		if err != nil {
			return err
		}
	}

	// Hand the project back with its full label set.
	for _, s := range sets {
		if err := t.project.ReplaceLabels(ctx, s.nr, s.original); err != nil {
			return fmt.Errorf("autocontext: restoring labels of dataset %d: %w", s.nr, err)
		}
	}

	if o.store != nil {
		m := &manifest.Manifest{
			Rounds:      o.rounds,
			Weights:     o.weights,
			Seed:        o.seed,
			Compression: o.compression.String(),
			Snapshots:   snapshots,
			CreatedAt:   time.Now().UTC(),
		}
		if err := manifest.Save(ctx, o.store, o.codec, m); err != nil {
			return fmt.Errorf("autocontext: writing manifest: %w", err)
		}
	}
	return nil
}

// scatterLabels reads and scatters the labels of every selected dataset
// up front, so a configuration error aborts before the first round runs.
func (t *Trainer) scatterLabels(ctx context.Context, dataCount int) ([]labelSet, error) {
	o := t.opts

	var selected []int
	if o.labelDataset == AllDatasets {
		for nr := 0; nr < dataCount; nr++ {
			selected = append(selected, nr)
		}
	} else {
		if o.labelDataset >= dataCount {
			return nil, fmt.Errorf("%w: %d (have %d datasets)", ErrLabelDataset, o.labelDataset, dataCount)
		}
		selected = []int{o.labelDataset}
	}

	scatterer := labels.New(func(lo *labels.Options) {
		lo.Weights = o.weights
		lo.RandomSeed = o.seed
	})

	sets := make([]labelSet, 0, len(selected))
	for _, nr := range selected {
		blocks, err := t.project.Labels(ctx, nr)
		if err != nil {
			return nil, err
		}

		began := time.Now()
		scattered, err := scatterer.Scatter(blocks, t.project.LabelCount(), o.rounds)
		o.metrics.RecordScatter(len(blocks), time.Since(began), err)
		o.logger.LogScatter(ctx, nr, len(blocks), o.rounds, err)
		if err != nil {
			return nil, translateError(err)
		}
		sets = append(sets, labelSet{nr: nr, original: blocks, rounds: scattered})
	}
	return sets, nil
}

func (t *Trainer) runRound(ctx context.Context, k int, sets []labelSet, keep []int, snapshots *[]string) error {
	o := t.opts

	for _, s := range sets {
		if err := t.project.ReplaceLabels(ctx, s.nr, s.rounds[k]); err != nil {
			return fmt.Errorf("round %d: inserting labels of dataset %d: %w", k, s.nr, err)
		}
	}

	began := time.Now()
	err := t.runner.Train(ctx, t.project.Ref())
	o.metrics.RecordTrain(k, time.Since(began), err)
	if err != nil {
		return fmt.Errorf("round %d: training: %w", k, err)
	}

	if o.store != nil {
		name := SnapshotName(k, o.rounds)
		err := t.snapshot(ctx, name)
		o.logger.LogSnapshot(ctx, name, err)
		if err != nil {
			return fmt.Errorf("round %d: %w", k, err)
		}
		*snapshots = append(*snapshots, name)
	}

	began = time.Now()
	err = t.runner.Predict(ctx, t.project.Ref(), o.predictOptions(false))
	o.metrics.RecordPredict(k, time.Since(began), err)
	if err != nil {
		return fmt.Errorf("round %d: prediction: %w", k, err)
	}

	return t.mergeAll(ctx, k, keep)
}

func (t *Trainer) snapshot(ctx context.Context, name string) error {
	w, err := t.opts.store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := t.project.Snapshot(ctx, w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// mergeAll folds the freshly predicted probability channels into every
// dataset. Datasets are independent, so the merges run concurrently.
func (t *Trainer) mergeAll(ctx context.Context, round int, keep []int) error {
	g, gctx := errgroup.WithContext(ctx)
	for nr := 0; nr < t.project.DataCount(); nr++ {
		nr := nr
		g.Go(func() error {
			began := time.Now()
			err := t.mergeDataset(gctx, round, nr, keep[nr])
			t.opts.metrics.RecordMerge(nr, time.Since(began), err)
			return err
		})
	}
	return g.Wait()
}

func (t *Trainer) mergeDataset(ctx context.Context, round, nr, keep int) error {
	o := t.opts

	raw, err := t.project.Raw(ctx, nr)
	if err != nil {
		return err
	}
	probs, err := t.project.Probabilities(ctx, nr)
	if err != nil {
		return fmt.Errorf("round %d: dataset %d: %w", round, nr, err)
	}
	if !volume.IsCanonical(probs) {
		probs = volume.ReshapeTZYXC(probs)
	}

	merged, err := volume.MergeChannels(raw, probs, keep)
	o.logger.LogMerge(ctx, nr, keep, probs.Channels(), err)
	if err != nil {
		return fmt.Errorf("round %d: dataset %d: %w", round, nr, err)
	}

	if o.store != nil {
		if err := t.cacheProbabilities(ctx, round, nr, probs); err != nil {
			return fmt.Errorf("round %d: dataset %d: caching probabilities: %w", round, nr, err)
		}
	}

	return t.project.ReplaceRaw(ctx, nr, merged)
}

func (t *Trainer) cacheProbabilities(ctx context.Context, round, nr int, probs *volume.Volume) error {
	o := t.opts

	w, err := o.store.Create(ctx, ProbabilitiesName(round, o.rounds, nr))
	if err != nil {
		return err
	}
	cw, err := o.compression.Compress(w)
	if err != nil {
		w.Close()
		return err
	}
	if _, err := probs.WriteTo(cw); err != nil {
		cw.Close()
		w.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// SnapshotName returns the artifact name of round k's project snapshot,
// zero-padded to the width of the final round index: rf_0.ilp, or
// rf_00.ilp ... rf_10.ilp for runs past ten rounds.
func SnapshotName(k, rounds int) string {
	width := len(strconv.Itoa(rounds - 1))
	return fmt.Sprintf("rf_%0*d.ilp", width, k)
}

// ProbabilitiesName returns the artifact name of the cached probability
// volume of one dataset in one round.
func ProbabilitiesName(k, rounds, nr int) string {
	width := len(strconv.Itoa(rounds - 1))
	return fmt.Sprintf("probs/round_%0*d/data_%04d.vol", width, k, nr)
}
