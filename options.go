package autocontext

import (
	"log/slog"

	"github.com/akreshuk/autocontext/blobstore"
	"github.com/akreshuk/autocontext/classifier"
	"github.com/akreshuk/autocontext/codec"
)

type options struct {
	rounds           int
	weights          []float64
	seed             *int64
	labelDataset     int
	store            blobstore.Store
	compression      blobstore.Compression
	codec            codec.Codec
	predictFile      bool
	outputFormat     string
	outputNameFormat string
	logger           *Logger
	metrics          MetricsCollector
}

func defaultOptions() options {
	return options{
		rounds:       3,
		labelDataset: AllDatasets,
		codec:        codec.Default,
		logger:       NoopLogger(),
		metrics:      NoopMetricsCollector{},
	}
}

// AllDatasets selects the labels of every dataset in the project.
const AllDatasets = -1

// Option configures Trainer construction and batch prediction behavior.
type Option func(*options)

// WithRounds sets the number of autocontext loop iterations (default 3).
func WithRounds(rounds int) Option {
	return func(o *options) {
		o.rounds = rounds
	}
}

// WithWeights sets the relative share of labels each round receives.
// Round k takes weights[k] / sum(weights[k:]) of the labels still
// unassigned when it runs; e.g. for 3 rounds with weights 3,2,1 the
// rounds receive 1/2, 1/3 and 1/6 of all labels. At least as many
// weights as rounds must be given; extras are ignored. Nil means equal
// shares.
func WithWeights(weights ...float64) Option {
	return func(o *options) {
		o.weights = weights
	}
}

// WithSeed pins the random source of the label scatter for reproducible
// runs. Without it, every run scatters independently at random.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithLabelDataset restricts scattering to the labels of one dataset.
// The default AllDatasets scatters every dataset's labels.
func WithLabelDataset(nr int) Option {
	return func(o *options) {
		o.labelDataset = nr
	}
}

// WithStore sets the artifact store receiving per-round project
// snapshots, cached probability volumes and the run manifest. Without a
// store nothing is persisted and batch prediction cannot replay the run.
func WithStore(store blobstore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithCompression selects the compression applied to cached probability
// volumes (default none).
func WithCompression(c blobstore.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec configures the codec used for the run manifest.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithPredictFile passes the classifier's predict-file flag on every
// prediction, for classifier versions that support it.
func WithPredictFile(enabled bool) Option {
	return func(o *options) {
		o.predictFile = enabled
	}
}

// WithOutputFormat overrides the classifier's export format for the
// final round of batch prediction; intermediate rounds always use the
// classifier default.
func WithOutputFormat(format string) Option {
	return func(o *options) {
		o.outputFormat = format
	}
}

// WithOutputFilenameFormat overrides the classifier's output path
// template for the final round of batch prediction.
func WithOutputFilenameFormat(format string) Option {
	return func(o *options) {
		o.outputNameFormat = format
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

func (o *options) predictOptions(final bool) classifier.PredictOptions {
	po := classifier.PredictOptions{
		PredictFile: o.predictFile,
	}
	if final {
		po.OutputFormat = o.outputFormat
		po.OutputFilenameFormat = o.outputNameFormat
	}
	return po
}
