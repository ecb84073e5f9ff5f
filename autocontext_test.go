package autocontext_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akreshuk/autocontext"
	"github.com/akreshuk/autocontext/blobstore"
	"github.com/akreshuk/autocontext/classifier"
	"github.com/akreshuk/autocontext/labels"
	"github.com/akreshuk/autocontext/manifest"
	"github.com/akreshuk/autocontext/project"
	"github.com/akreshuk/autocontext/volume"
)

// recordingRunner fakes the external classifier in-process. Each Train
// call snapshots the labels currently installed in the project, and
// each Predict installs a flat probability map per dataset so the
// trainer has something to merge.
type recordingRunner struct {
	proj       *project.Memory
	classes    int
	trainRefs  []string
	trained    [][][]*labels.Block // per train call, per dataset
	predicted  []classifier.PredictOptions
	trainErr   error
	predictErr error
}

func (r *recordingRunner) Train(ctx context.Context, ref string) error {
	if r.trainErr != nil {
		return r.trainErr
	}
	r.trainRefs = append(r.trainRefs, ref)

	var snapshot [][]*labels.Block
	for nr := 0; nr < r.proj.DataCount(); nr++ {
		blocks, err := r.proj.Labels(ctx, nr)
		if err != nil {
			return err
		}
		snapshot = append(snapshot, blocks)
	}
	r.trained = append(r.trained, snapshot)
	return nil
}

func (r *recordingRunner) Predict(ctx context.Context, _ string, opts classifier.PredictOptions) error {
	if r.predictErr != nil {
		return r.predictErr
	}
	r.predicted = append(r.predicted, opts)

	for nr := 0; nr < r.proj.DataCount(); nr++ {
		raw, err := r.proj.Raw(ctx, nr)
		if err != nil {
			return err
		}
		shape := raw.Shape()
		probs, err := volume.New(volume.CanonicalAxes, shape[0], shape[1], shape[2], shape[3], r.classes)
		if err != nil {
			return err
		}
		for i := range probs.Data() {
			probs.Data()[i] = 1.0 / float32(r.classes)
		}
		if err := r.proj.SetProbabilities(nr, probs); err != nil {
			return err
		}
	}
	return nil
}

// newTestProject builds a 4x5 two-class single-channel dataset.
func newTestProject(t *testing.T) (*project.Memory, *labels.Block) {
	t.Helper()

	raw, err := volume.New("yx", 4, 5)
	require.NoError(t, err)
	for i := range raw.Data() {
		raw.Data()[i] = float32(i)
	}

	block, err := labels.NewBlock(4, 5)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		block.Set(i, 1)
	}
	for i := 10; i < 16; i++ {
		block.Set(i, 2)
	}

	proj := project.NewMemory(2)
	proj.AddDataset(raw, []*labels.Block{block.Clone()})
	return proj, block
}

func TestNew_Validation(t *testing.T) {
	proj, _ := newTestProject(t)
	runner := &recordingRunner{proj: proj, classes: 2}

	t.Run("nil project", func(t *testing.T) {
		_, err := autocontext.New(nil, runner)
		assert.ErrorIs(t, err, autocontext.ErrNilProject)
	})

	t.Run("nil runner", func(t *testing.T) {
		_, err := autocontext.New(proj, nil)
		assert.ErrorIs(t, err, autocontext.ErrNilRunner)
	})

	t.Run("zero rounds", func(t *testing.T) {
		_, err := autocontext.New(proj, runner, autocontext.WithRounds(0))
		assert.ErrorIs(t, err, autocontext.ErrInvalidRounds)
	})

	t.Run("too few weights", func(t *testing.T) {
		_, err := autocontext.New(proj, runner,
			autocontext.WithRounds(3),
			autocontext.WithWeights(1, 1),
		)
		var wce *autocontext.WeightCountError
		require.ErrorAs(t, err, &wce)
		assert.Equal(t, 2, wce.Weights)
		assert.Equal(t, 3, wce.Splits)
	})

	t.Run("negative label dataset", func(t *testing.T) {
		_, err := autocontext.New(proj, runner, autocontext.WithLabelDataset(-2))
		assert.ErrorIs(t, err, autocontext.ErrLabelDataset)
	})
}

func TestTrainer_Run(t *testing.T) {
	ctx := context.Background()
	proj, original := newTestProject(t)
	runner := &recordingRunner{proj: proj, classes: 2}
	store := blobstore.NewMemory()

	const rounds = 3
	trainer, err := autocontext.New(proj, runner,
		autocontext.WithRounds(rounds),
		autocontext.WithSeed(7),
		autocontext.WithStore(store),
	)
	require.NoError(t, err)
	require.NoError(t, trainer.Run(ctx))

	t.Run("one train and predict per round", func(t *testing.T) {
		assert.Len(t, runner.trainRefs, rounds)
		assert.Len(t, runner.predicted, rounds)
		for _, ref := range runner.trainRefs {
			assert.Equal(t, proj.Ref(), ref)
		}
	})

	t.Run("rounds partition the labels", func(t *testing.T) {
		require.Len(t, runner.trained, rounds)

		seen := make(map[int]bool)
		total := 0
		for k, snapshot := range runner.trained {
			block := snapshot[0][0]
			for i := 0; i < block.Len(); i++ {
				if block.At(i) == 0 {
					continue
				}
				assert.Equal(t, original.At(i), block.At(i), "round %d voxel %d", k, i)
				assert.False(t, seen[i], "voxel %d labeled in two rounds", i)
				seen[i] = true
				total++
			}
		}
		assert.Equal(t, original.Count(1)+original.Count(2), total)
	})

	t.Run("original labels restored", func(t *testing.T) {
		blocks, err := proj.Labels(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, original.Data(), blocks[0].Data())
	})

	t.Run("probability channels merged", func(t *testing.T) {
		channels, err := proj.ChannelCount(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 1+2, channels)

		raw, err := proj.Raw(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, volume.CanonicalAxes, raw.Axes())
		// Raw channel survives every merge.
		assert.Equal(t, float32(0), raw.Data()[0])
	})

	t.Run("snapshots and manifest stored", func(t *testing.T) {
		names, err := store.List(ctx, "rf_")
		require.NoError(t, err)
		assert.Equal(t, []string{"rf_0.ilp", "rf_1.ilp", "rf_2.ilp"}, names)

		m, err := manifest.Load(ctx, store)
		require.NoError(t, err)
		assert.Equal(t, rounds, m.Rounds)
		assert.Equal(t, names, m.Snapshots)
		require.NotNil(t, m.Seed)
		assert.Equal(t, int64(7), *m.Seed)
	})

	t.Run("probabilities cached per round", func(t *testing.T) {
		names, err := store.List(ctx, "probs/")
		require.NoError(t, err)
		assert.Len(t, names, rounds)
	})
}

func TestTrainer_Run_WithoutStore(t *testing.T) {
	ctx := context.Background()
	proj, _ := newTestProject(t)
	runner := &recordingRunner{proj: proj, classes: 2}

	trainer, err := autocontext.New(proj, runner, autocontext.WithRounds(2), autocontext.WithSeed(1))
	require.NoError(t, err)
	require.NoError(t, trainer.Run(ctx))
	assert.Len(t, runner.trainRefs, 2)
}

func TestTrainer_Run_Deterministic(t *testing.T) {
	ctx := context.Background()

	run := func() [][]*labels.Block {
		proj, _ := newTestProject(t)
		runner := &recordingRunner{proj: proj, classes: 2}
		trainer, err := autocontext.New(proj, runner,
			autocontext.WithRounds(3),
			autocontext.WithSeed(99),
		)
		require.NoError(t, err)
		require.NoError(t, trainer.Run(ctx))

		out := make([][]*labels.Block, len(runner.trained))
		for k, snapshot := range runner.trained {
			out[k] = snapshot[0]
		}
		return out
	}

	first, second := run(), run()
	require.Len(t, second, len(first))
	for k := range first {
		assert.Equal(t, first[k][0].Data(), second[k][0].Data(), "round %d", k)
	}
}

func TestTrainer_Run_LabelDatasetOutOfRange(t *testing.T) {
	proj, _ := newTestProject(t)
	runner := &recordingRunner{proj: proj, classes: 2}

	trainer, err := autocontext.New(proj, runner, autocontext.WithLabelDataset(3))
	require.NoError(t, err)

	err = trainer.Run(context.Background())
	assert.ErrorIs(t, err, autocontext.ErrLabelDataset)
	assert.Empty(t, runner.trainRefs)
}

func TestTrainer_Run_TrainError(t *testing.T) {
	proj, original := newTestProject(t)
	boom := errors.New("classifier crashed")
	runner := &recordingRunner{proj: proj, classes: 2, trainErr: boom}

	trainer, err := autocontext.New(proj, runner, autocontext.WithSeed(1))
	require.NoError(t, err)

	err = trainer.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "training")

	// The failed run leaves the round's subset installed; callers decide
	// whether to reopen the project. The original block is untouched.
	assert.Equal(t, 6, original.Count(1))
}

func TestTrainer_Run_PredictError(t *testing.T) {
	proj, _ := newTestProject(t)
	boom := errors.New("prediction oom")
	runner := &recordingRunner{proj: proj, classes: 2, predictErr: boom}

	trainer, err := autocontext.New(proj, runner, autocontext.WithSeed(1))
	require.NoError(t, err)

	err = trainer.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "prediction")
}

func TestSnapshotName(t *testing.T) {
	tests := []struct {
		k, rounds int
		want      string
	}{
		{0, 3, "rf_0.ilp"},
		{2, 3, "rf_2.ilp"},
		{0, 11, "rf_00.ilp"},
		{7, 11, "rf_07.ilp"},
		{10, 11, "rf_10.ilp"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, autocontext.SnapshotName(tt.k, tt.rounds))
		})
	}
}

func TestTrainer_Run_WeightedRounds(t *testing.T) {
	ctx := context.Background()

	// 60 voxels of one class; weights 3:2:1 give 30/20/10 per round.
	raw, err := volume.New("yx", 6, 10)
	require.NoError(t, err)
	block, err := labels.NewBlock(6, 10)
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		block.Set(i, 1)
	}

	proj := project.NewMemory(1)
	proj.AddDataset(raw, []*labels.Block{block})
	runner := &recordingRunner{proj: proj, classes: 1}

	trainer, err := autocontext.New(proj, runner,
		autocontext.WithRounds(3),
		autocontext.WithWeights(3, 2, 1),
		autocontext.WithSeed(5),
	)
	require.NoError(t, err)
	require.NoError(t, trainer.Run(ctx))

	want := []int{30, 20, 10}
	for k, snapshot := range runner.trained {
		assert.Equal(t, want[k], snapshot[0][0].Count(1), "round %d", k)
	}
}

func TestTrainer_Run_MultiDataset(t *testing.T) {
	ctx := context.Background()

	proj := project.NewMemory(2)
	for d := 0; d < 3; d++ {
		raw, err := volume.New("yx", 4, 4)
		require.NoError(t, err)
		block, err := labels.NewBlock(4, 4)
		require.NoError(t, err)
		block.Set(d, 1)
		block.Set(d+8, 2)
		proj.AddDataset(raw, []*labels.Block{block})
	}
	runner := &recordingRunner{proj: proj, classes: 2}

	trainer, err := autocontext.New(proj, runner,
		autocontext.WithRounds(2),
		autocontext.WithSeed(3),
	)
	require.NoError(t, err)
	require.NoError(t, trainer.Run(ctx))

	for nr := 0; nr < 3; nr++ {
		channels, err := proj.ChannelCount(ctx, nr)
		require.NoError(t, err)
		assert.Equal(t, 3, channels, "dataset %d", nr)
	}
}

func TestTrainer_Run_SingleLabelDataset(t *testing.T) {
	ctx := context.Background()

	proj := project.NewMemory(2)
	var blocks []*labels.Block
	for d := 0; d < 2; d++ {
		raw, err := volume.New("yx", 4, 4)
		require.NoError(t, err)
		block, err := labels.NewBlock(4, 4)
		require.NoError(t, err)
		block.Set(0, 1)
		block.Set(8, 2)
		blocks = append(blocks, block.Clone())
		proj.AddDataset(raw, []*labels.Block{block})
	}
	runner := &recordingRunner{proj: proj, classes: 2}

	trainer, err := autocontext.New(proj, runner,
		autocontext.WithRounds(2),
		autocontext.WithSeed(3),
		autocontext.WithLabelDataset(1),
	)
	require.NoError(t, err)
	require.NoError(t, trainer.Run(ctx))

	// Dataset 0's labels were never scattered.
	for _, snapshot := range runner.trained {
		assert.Equal(t, blocks[0].Data(), snapshot[0][0].Data())
	}
}

func TestTrainer_Run_MetricsCollected(t *testing.T) {
	proj, _ := newTestProject(t)
	runner := &recordingRunner{proj: proj, classes: 2}
	metrics := &autocontext.BasicMetricsCollector{}

	trainer, err := autocontext.New(proj, runner,
		autocontext.WithRounds(2),
		autocontext.WithSeed(1),
		autocontext.WithMetricsCollector(metrics),
	)
	require.NoError(t, err)
	require.NoError(t, trainer.Run(context.Background()))

	assert.Equal(t, int64(1), metrics.ScatterCount.Load())
	assert.Equal(t, int64(2), metrics.TrainCount.Load())
	assert.Equal(t, int64(2), metrics.PredictCount.Load())
	assert.Equal(t, int64(2), metrics.MergeCount.Load())
	assert.Equal(t, int64(2), metrics.RoundCount.Load())
	assert.Equal(t, int64(0), metrics.TrainErrors.Load())
}

func ExampleSnapshotName() {
	fmt.Println(autocontext.SnapshotName(4, 12))
	// Output: rf_04.ilp
}
