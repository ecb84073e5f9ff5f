// Package classifier defines the boundary to the external
// pixel-classification tool. Training and inference happen entirely on
// the classifier's side; the only data exchanged is the project locator
// and file paths.
package classifier

import "context"

// PredictOptions configures a prediction pass.
type PredictOptions struct {
	// OutputFormat is the classifier's export format (default "hdf5").
	OutputFormat string

	// OutputFilenameFormat is the classifier's output path template.
	OutputFilenameFormat string

	// Inputs are extra input file locators for batch prediction. Empty
	// means "predict every dataset of the project".
	Inputs []string

	// PredictFile passes the classifier's predict-file flag, for
	// versions that support it.
	PredictFile bool
}

// Runner drives one external classifier executable.
type Runner interface {
	// Train retrains the classifier on the project's current labels.
	Train(ctx context.Context, project string) error

	// Predict runs inference with the project's trained state.
	Predict(ctx context.Context, project string, opts PredictOptions) error
}
