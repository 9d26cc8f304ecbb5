package kmajority

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/kmajority/nn"
)

// DefaultMaxIterations is the iteration budget used when WithMaxIterations
// is not given.
const DefaultMaxIterations = 10

// InitMethod selects how initial centroids are seeded from the data.
type InitMethod int

const (
	// InitRandom samples distinct data points uniformly without replacement.
	InitRandom InitMethod = iota
	// InitGonzales picks a random first point, then repeatedly the point
	// farthest from all centroids chosen so far.
	InitGonzales
	// InitKMeansPP samples each further point with probability proportional
	// to its squared Hamming distance from the nearest chosen centroid.
	InitKMeansPP
)

func (m InitMethod) String() string {
	switch m {
	case InitRandom:
		return "random"
	case InitGonzales:
		return "gonzales"
	case InitKMeansPP:
		return "kmeans++"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

type options struct {
	maxIterations    int
	initMethod       InitMethod
	indexType        nn.Type
	indexOptions     []nn.Option
	seed             int64
	workers          int
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures a clustering run.
type Option func(*options)

// WithMaxIterations sets the iteration budget. It must be positive.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithInitMethod selects the centroid seeding strategy.
func WithInitMethod(m InitMethod) Option {
	return func(o *options) {
		o.initMethod = m
	}
}

// WithIndexType selects the nearest-centroid search strategy used during
// quantization. The result is identical for both types; Hierarchical is
// faster for large cluster counts.
func WithIndexType(t nn.Type) Option {
	return func(o *options) {
		o.indexType = t
	}
}

// WithIndexOptions passes tuning options to the nearest-centroid index.
func WithIndexOptions(opts ...nn.Option) Option {
	return func(o *options) {
		o.indexOptions = append(o.indexOptions, opts...)
	}
}

// WithSeed fixes the random seed used for centroid initialization.
// Runs with the same seed, data and options produce identical results.
// Without it, the seed is derived from the current time.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithWorkers bounds the number of goroutines used for quantization and
// centroid recomputation. Values below 1 mean runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
//	metrics := &kmajority.BasicMetricsCollector{}
//	km, _ := kmajority.New(256, data, kmajority.WithMetricsCollector(metrics))
//	// ... km.Cluster(ctx) ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
//	logger := kmajority.NewJSONLogger(slog.LevelInfo)
//	km, _ := kmajority.New(256, data, kmajority.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

func applyOptions(optFns []Option) options {
	o := options{
		maxIterations: DefaultMaxIterations,
		initMethod:    InitRandom,
		indexType:     nn.Linear,
		seed:          time.Now().UnixNano(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}

func (o *options) validate() error {
	if o.maxIterations <= 0 {
		return &ConfigurationError{Param: "maxIterations", Value: o.maxIterations, Reason: "must be positive"}
	}
	switch o.initMethod {
	case InitRandom, InitGonzales, InitKMeansPP:
	default:
		return &ConfigurationError{Param: "initMethod", Value: o.initMethod, Reason: "unknown initialization method"}
	}
	switch o.indexType {
	case nn.Linear, nn.Hierarchical:
	default:
		return &ConfigurationError{Param: "indexType", Value: o.indexType, Reason: "unknown index type"}
	}
	return nil
}
