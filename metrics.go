package kmajority

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting clustering metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordQuantize is called after each quantization pass with the number of
	// points assigned and how many changed cluster.
	RecordQuantize(points, changed int, duration time.Duration)

	// RecordRecovery is called when empty clusters were refilled.
	RecordRecovery(clusters int)

	// RecordRecompute is called after centroids were recomputed.
	RecordRecompute(clusters int, duration time.Duration)

	// RecordRun is called once a clustering run terminates.
	RecordRun(iterations int, state State, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordQuantize(int, int, time.Duration)     {}
func (NoopMetricsCollector) RecordRecovery(int)                         {}
func (NoopMetricsCollector) RecordRecompute(int, time.Duration)         {}
func (NoopMetricsCollector) RecordRun(int, State, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	QuantizeCount      atomic.Int64
	QuantizeTotalNanos atomic.Int64
	ChangedPoints      atomic.Int64
	RecoveredClusters  atomic.Int64
	RecomputeCount     atomic.Int64
	RecomputeNanos     atomic.Int64
	RunCount           atomic.Int64
	RunErrors          atomic.Int64
	RunsConverged      atomic.Int64
	RunsExhausted      atomic.Int64
	TotalIterations    atomic.Int64
}

// RecordQuantize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuantize(_, changed int, duration time.Duration) {
	b.QuantizeCount.Add(1)
	b.QuantizeTotalNanos.Add(duration.Nanoseconds())
	b.ChangedPoints.Add(int64(changed))
}

// RecordRecovery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRecovery(clusters int) {
	b.RecoveredClusters.Add(int64(clusters))
}

// RecordRecompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRecompute(_ int, duration time.Duration) {
	b.RecomputeCount.Add(1)
	b.RecomputeNanos.Add(duration.Nanoseconds())
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(iterations int, state State, _ time.Duration, err error) {
	b.RunCount.Add(1)
	b.TotalIterations.Add(int64(iterations))
	switch {
	case err != nil:
		b.RunErrors.Add(1)
	case state == StateConverged:
		b.RunsConverged.Add(1)
	case state == StateMaxIterationsReached:
		b.RunsExhausted.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		QuantizeCount:     b.QuantizeCount.Load(),
		ChangedPoints:     b.ChangedPoints.Load(),
		RecoveredClusters: b.RecoveredClusters.Load(),
		RecomputeCount:    b.RecomputeCount.Load(),
		RunCount:          b.RunCount.Load(),
		RunErrors:         b.RunErrors.Load(),
		RunsConverged:     b.RunsConverged.Load(),
		RunsExhausted:     b.RunsExhausted.Load(),
		TotalIterations:   b.TotalIterations.Load(),
	}
	if s.QuantizeCount > 0 {
		s.QuantizeAvgNanos = b.QuantizeTotalNanos.Load() / s.QuantizeCount
	}
	if s.RecomputeCount > 0 {
		s.RecomputeAvgNanos = b.RecomputeNanos.Load() / s.RecomputeCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	QuantizeCount     int64
	QuantizeAvgNanos  int64
	ChangedPoints     int64
	RecoveredClusters int64
	RecomputeCount    int64
	RecomputeAvgNanos int64
	RunCount          int64
	RunErrors         int64
	RunsConverged     int64
	RunsExhausted     int64
	TotalIterations   int64
}
