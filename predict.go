package autocontext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akreshuk/autocontext/blobstore"
	"github.com/akreshuk/autocontext/classifier"
	"github.com/akreshuk/autocontext/manifest"
	"github.com/akreshuk/autocontext/project"
	"github.com/akreshuk/autocontext/volume"
)

// Forests lists the per-round project snapshots in the artifact store,
// ordered by round. The round indices encoded in the names must be
// exactly 0..n-1; a gap means the run is incomplete or the store holds
// artifacts from more than one run.
func Forests(ctx context.Context, store blobstore.Store) ([]string, error) {
	if store == nil {
		return nil, ErrNoStore
	}

	names, err := store.List(ctx, "rf_")
	if err != nil {
		return nil, err
	}

	type snap struct {
		round int
		name  string
	}
	snaps := make([]snap, 0, len(names))
	for _, name := range names {
		round, ok := parseSnapshotName(name)
		if !ok {
			continue
		}
		snaps = append(snaps, snap{round: round, name: name})
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("no snapshots in store: %w", blobstore.ErrNotFound)
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].round < snaps[j].round })

	ordered := make([]string, 0, len(snaps))
	for i, s := range snaps {
		if s.round != i {
			return nil, fmt.Errorf("snapshot rounds not contiguous: expected round %d, found %q", i, s.name)
		}
		ordered = append(ordered, s.name)
	}
	return ordered, nil
}

func parseSnapshotName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "rf_")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".ilp")
	if !ok {
		return 0, false
	}
	round, err := strconv.Atoi(rest)
	if err != nil || round < 0 {
		return 0, false
	}
	return round, true
}

// BatchPredict replays a completed training run on a project holding
// new, unlabeled datasets. Each round's snapshot predicts all datasets
// and its probability channels are folded in before the next round's
// snapshot runs, mirroring what the datasets looked like during
// training. Output options such as WithOutputFormat apply to the final
// round only.
//
// The snapshot order comes from the run manifest; stores written by
// older runs without a manifest fall back to listing rf_* artifacts.
func BatchPredict(ctx context.Context, store blobstore.Store, p project.Store, r classifier.Runner, optFns ...Option) error {
	if store == nil {
		return ErrNoStore
	}
	if p == nil {
		return ErrNilProject
	}
	if r == nil {
		return ErrNilRunner
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	snaps, err := runSnapshots(ctx, store)
	if err != nil {
		return err
	}

	if err := p.ExtendTZYXC(ctx); err != nil {
		return fmt.Errorf("autocontext: reshaping datasets: %w", err)
	}

	dataCount := p.DataCount()
	keep := make([]int, dataCount)
	for nr := 0; nr < dataCount; nr++ {
		ch, err := p.ChannelCount(ctx, nr)
		if err != nil {
			return err
		}
		keep[nr] = ch
	}

	for k, name := range snaps {
		final := k == len(snaps)-1

		ref, cleanup, err := materialize(ctx, store, name)
		if err != nil {
			return fmt.Errorf("round %d: fetching snapshot %s: %w", k, name, err)
		}

		began := time.Now()
		err = r.Predict(ctx, ref, opts.predictOptions(final))
		cleanup()
		opts.metrics.RecordPredict(k, time.Since(began), err)
		if err != nil {
			return fmt.Errorf("round %d: prediction with %s: %w", k, name, err)
		}

		if final {
			// The classifier exported the last round's results itself.
			opts.logger.LogRound(ctx, k, len(snaps), time.Since(began), nil)
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		for nr := 0; nr < dataCount; nr++ {
			nr := nr
			g.Go(func() error {
				began := time.Now()
				err := mergePrediction(gctx, p, nr, keep[nr], opts.logger)
				opts.metrics.RecordMerge(nr, time.Since(began), err)
				if err != nil {
					return fmt.Errorf("round %d: dataset %d: %w", k, nr, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		opts.logger.LogRound(ctx, k, len(snaps), time.Since(began), nil)
	}
	return nil
}

func runSnapshots(ctx context.Context, store blobstore.Store) ([]string, error) {
	m, err := manifest.Load(ctx, store)
	switch {
	case err == nil:
		return m.Snapshots, nil
	case errors.Is(err, blobstore.ErrNotFound):
		return Forests(ctx, store)
	default:
		return nil, err
	}
}

func mergePrediction(ctx context.Context, p project.Store, nr, keep int, log *Logger) error {
	raw, err := p.Raw(ctx, nr)
	if err != nil {
		return err
	}
	probs, err := p.Probabilities(ctx, nr)
	if err != nil {
		return err
	}
	if !volume.IsCanonical(probs) {
		probs = volume.ReshapeTZYXC(probs)
	}

	merged, err := volume.MergeChannels(raw, probs, keep)
	log.LogMerge(ctx, nr, keep, probs.Channels(), err)
	if err != nil {
		return err
	}
	return p.ReplaceRaw(ctx, nr, merged)
}

// localPaths is satisfied by stores whose blobs are plain files, letting
// the classifier open a snapshot in place.
type localPaths interface {
	Path(name string) string
}

// materialize returns a filesystem path for a snapshot blob, downloading
// it to a temporary file when the store is not file-backed. The cleanup
// func removes the temporary copy.
func materialize(ctx context.Context, store blobstore.Store, name string) (string, func(), error) {
	if lp, ok := store.(localPaths); ok {
		return lp.Path(name), func() {}, nil
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return "", nil, err
	}
	defer blob.Close()

	f, err := os.CreateTemp("", "autocontext-rf-*.ilp")
	if err != nil {
		return "", nil, err
	}
	if _, err := io.Copy(f, blob); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, err
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
