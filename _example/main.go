package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/akreshuk/autocontext"
	"github.com/akreshuk/autocontext/blobstore"
	"github.com/akreshuk/autocontext/classifier"
	"github.com/akreshuk/autocontext/labels"
	"github.com/akreshuk/autocontext/project"
	"github.com/akreshuk/autocontext/testutil"
	"github.com/akreshuk/autocontext/volume"
)

// stubRunner replaces the external classifier so the demo runs
// standalone: training is a no-op, prediction emits uniform probability
// maps.
type stubRunner struct {
	proj    *project.Memory
	classes int
}

func (r *stubRunner) Train(context.Context, string) error { return nil }

func (r *stubRunner) Predict(ctx context.Context, _ string, _ classifier.PredictOptions) error {
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

func main() {
	ctx := context.Background()

	seed := int64(4711)
	size := 512
	classes := 3
	rounds := 3

	rng := testutil.NewRNG(seed)
	proj := project.NewMemory(classes)
	proj.AddDataset(
		rng.UniformVolume("yx", size, size),
		[]*labels.Block{rng.SparseBlock(0.05, classes, size, size)},
	)

	dir, err := os.MkdirTemp("", "autocontext-demo-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	store, err := blobstore.NewLocal(dir)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- Train ---")
	fmt.Println("Size:", size, "x", size)
	fmt.Println("Classes:", classes)
	fmt.Println("Rounds:", rounds)

	runner := &stubRunner{proj: proj, classes: classes}
	metrics := &autocontext.BasicMetricsCollector{}

	trainer, err := autocontext.New(proj, runner,
		autocontext.WithRounds(rounds),
		autocontext.WithSeed(seed),
		autocontext.WithStore(store),
		autocontext.WithCompression(blobstore.CompressionZstd),
		autocontext.WithMetricsCollector(metrics),
	)
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	if err := trainer.Run(ctx); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Seconds: %.2f\n\n", time.Since(start).Seconds())

	fmt.Println("Trainings:", metrics.TrainCount.Load())
	fmt.Println("Predictions:", metrics.PredictCount.Load())
	fmt.Println("Merges:", metrics.MergeCount.Load())

	snaps, err := autocontext.Forests(ctx, store)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Snapshots:", snaps)

	channels, err := proj.ChannelCount(ctx, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Channels after training:", channels)
}
