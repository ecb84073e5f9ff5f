package autocontext

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with autocontext-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRound adds a round field to the logger.
func (l *Logger) WithRound(round int) *Logger {
	return &Logger{
		Logger: l.Logger.With("round", round),
	}
}

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(nr int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", nr),
	}
}

// LogScatter logs a label scatter operation.
func (l *Logger) LogScatter(ctx context.Context, dataset, blocks, rounds int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "label scatter failed",
			"dataset", dataset,
			"blocks", blocks,
			"rounds", rounds,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "labels scattered",
			"dataset", dataset,
			"blocks", blocks,
			"rounds", rounds,
		)
	}
}

// LogRound logs the completion of one autocontext round.
func (l *Logger) LogRound(ctx context.Context, round, rounds int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "autocontext round failed",
			"round", round+1,
			"rounds", rounds,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "autocontext round completed",
			"round", round+1,
			"rounds", rounds,
			"duration", duration,
		)
	}
}

// LogSnapshot logs a project snapshot write.
func (l *Logger) LogSnapshot(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"snapshot", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"snapshot", name,
		)
	}
}

// LogMerge logs a probability merge into a dataset.
func (l *Logger) LogMerge(ctx context.Context, dataset, keep, channels int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "probability merge failed",
			"dataset", dataset,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "probabilities merged",
			"dataset", dataset,
			"keep_channels", keep,
			"channels", channels,
		)
	}
}
