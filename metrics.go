package autocontext

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational
// metrics. Implement this interface to integrate with monitoring
// systems like Prometheus.
type MetricsCollector interface {
	// RecordScatter is called after the labels of one dataset have been
	// scattered. blocks is the number of label blocks processed.
	RecordScatter(blocks int, duration time.Duration, err error)

	// RecordTrain is called after each training pass.
	RecordTrain(round int, duration time.Duration, err error)

	// RecordPredict is called after each prediction pass.
	RecordPredict(round int, duration time.Duration, err error)

	// RecordMerge is called after probabilities have been merged back
	// into one dataset.
	RecordMerge(dataset int, duration time.Duration, err error)

	// RecordRound is called after each completed autocontext round.
	RecordRound(round int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordScatter(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordTrain(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordPredict(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordMerge(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordRound(int, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ScatterCount      atomic.Int64
	ScatterBlocks     atomic.Int64
	ScatterErrors     atomic.Int64
	TrainCount        atomic.Int64
	TrainErrors       atomic.Int64
	TrainTotalNanos   atomic.Int64
	PredictCount      atomic.Int64
	PredictErrors     atomic.Int64
	PredictTotalNanos atomic.Int64
	MergeCount        atomic.Int64
	MergeErrors       atomic.Int64
	RoundCount        atomic.Int64
	RoundErrors       atomic.Int64
	RoundTotalNanos   atomic.Int64
}

// RecordScatter implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScatter(blocks int, _ time.Duration, err error) {
	b.ScatterCount.Add(1)
	b.ScatterBlocks.Add(int64(blocks))
	if err != nil {
		b.ScatterErrors.Add(1)
	}
}

// RecordTrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrain(_ int, duration time.Duration, err error) {
	b.TrainCount.Add(1)
	b.TrainTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrainErrors.Add(1)
	}
}

// RecordPredict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPredict(_ int, duration time.Duration, err error) {
	b.PredictCount.Add(1)
	b.PredictTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PredictErrors.Add(1)
	}
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(_ int, _ time.Duration, err error) {
	b.MergeCount.Add(1)
	if err != nil {
		b.MergeErrors.Add(1)
	}
}

// RecordRound implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRound(_ int, duration time.Duration, err error) {
	b.RoundCount.Add(1)
	b.RoundTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RoundErrors.Add(1)
	}
}
