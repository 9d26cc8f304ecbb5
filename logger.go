package kmajority

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with clustering-specific helpers.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithClusters adds a clusters field to the logger.
func (l *Logger) WithClusters(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("clusters", k),
	}
}

// WithDimension adds a bit-length field to the logger.
func (l *Logger) WithDimension(bits int) *Logger {
	return &Logger{
		Logger: l.Logger.With("bits", bits),
	}
}

// LogRound logs one completed clustering round.
func (l *Logger) LogRound(ctx context.Context, iteration, changed, recovered int, duration time.Duration) {
	l.DebugContext(ctx, "round completed",
		"iteration", iteration,
		"changed", changed,
		"recovered", recovered,
		"duration", duration,
	)
}

// LogRecovery logs a point moved into an empty cluster.
func (l *Logger) LogRecovery(ctx context.Context, cluster, donor, point int, distance uint32) {
	l.DebugContext(ctx, "empty cluster refilled",
		"cluster", cluster,
		"donor", donor,
		"point", point,
		"distance", distance,
	)
}

// LogRun logs the end of a clustering run.
func (l *Logger) LogRun(ctx context.Context, iterations int, state State, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clustering failed",
			"iterations", iterations,
			"state", state.String(),
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "clustering finished",
		"iterations", iterations,
		"state", state.String(),
		"duration", duration,
	)
}

// LogVocabulary logs a vocabulary save or load.
func (l *Logger) LogVocabulary(ctx context.Context, op, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "vocabulary "+op+" failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "vocabulary "+op,
		"name", name,
	)
}
