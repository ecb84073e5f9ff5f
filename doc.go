// Package autocontext implements iterative autocontext training for
// pixel classification.
//
// Autocontext improves a pixel classifier by training it several times
// in a row: each round trains on a fresh, disjoint subset of the user's
// labels, predicts all datasets, and appends the predicted class
// probabilities to every dataset as extra channels. Later rounds see
// earlier rounds' predictions as features, which lets the classifier
// learn from spatial context it could not express on raw data alone.
//
// # Training
//
//	ctx := context.Background()
//	store, _ := blobstore.NewLocal("./artifacts")
//	runner, _ := classifier.NewExec("/usr/bin/run_ilastik.sh")
//
//	trainer, _ := autocontext.New(proj, runner,
//	    autocontext.WithRounds(3),
//	    autocontext.WithSeed(42),
//	    autocontext.WithStore(store),
//	)
//	err := trainer.Run(ctx)
//
// Each round leaves a project snapshot (rf_0.ilp, rf_1.ilp, ...) and the
// run manifest in the store. The project's own labels are restored after
// the final round.
//
// # Label scattering
//
// Labels are split up front by the labels package: every class's voxels
// are pooled and each round draws its share uniformly at random without
// replacement, so the rounds' subsets are disjoint and together cover
// every labeled voxel. WithWeights skews how many labels each round
// receives; WithSeed makes the split reproducible.
//
// # Batch prediction
//
// A finished run is replayed on new data with the stored snapshots:
//
//	err := autocontext.BatchPredict(ctx, store, newProj, runner,
//	    autocontext.WithOutputFormat("hdf5"),
//	)
//
// Every snapshot predicts in training order, with each round's
// probability channels folded into the datasets before the next
// snapshot runs.
package autocontext
