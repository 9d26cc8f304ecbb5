package kmajority

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/time/rate"

	"github.com/hupe1980/kmajority/dataset"
)

// State is the lifecycle stage of a clustering run.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateIterating
	StateConverged
	StateMaxIterationsReached
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateMaxIterationsReached:
		return "max_iterations_reached"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Terminal reports whether the run has finished.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateMaxIterationsReached
}

// unassigned marks a point that has not been quantized yet.
const unassigned = -1

// progressInterval throttles info-level progress logs on long runs.
const progressInterval = 5 * time.Second

// KMajority clusters binary descriptors by Hamming distance, computing
// centroids by per-bit majority vote.
//
// A KMajority borrows its dataset for the lifetime of the run and never
// writes to it. It is not safe for concurrent use; Cluster parallelizes
// internally.
type KMajority struct {
	opts options

	data        dataset.Matrix
	numPoints   int
	rowBytes    int
	numClusters int

	centroids     [][]byte
	belongsTo     []int
	distanceTo    []uint32
	clusterCounts []int
	members       []*roaring.Bitmap

	state      State
	iterations int
	quantized  bool

	rng      *rand.Rand
	logger   *Logger
	metrics  MetricsCollector
	progress rate.Sometimes
}

// New validates the configuration and prepares a clustering run over data.
// No work is done until Cluster is called.
func New(numClusters int, data dataset.Matrix, optFns ...Option) (*KMajority, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if numClusters <= 0 {
		return nil, &ConfigurationError{Param: "numClusters", Value: numClusters, Reason: "must be positive"}
	}
	if data == nil {
		return nil, &ConfigurationError{Param: "data", Value: nil, Reason: "dataset is required"}
	}
	if data.RowBytes() <= 0 {
		return nil, &ConfigurationError{Param: "rowBytes", Value: data.RowBytes(), Reason: "descriptors must be at least one byte"}
	}
	n := data.Rows()
	if uint64(n) > math.MaxUint32 {
		return nil, &ConfigurationError{Param: "rows", Value: n, Reason: "too many data points"}
	}
	if numClusters > n {
		return nil, &InsufficientDataError{
			Points:   n,
			Clusters: numClusters,
			Reason:   "more clusters than data points",
			atConfig: true,
		}
	}

	km := &KMajority{
		opts:        o,
		data:        data,
		numPoints:   n,
		rowBytes:    data.RowBytes(),
		numClusters: numClusters,
		rng:         rand.New(rand.NewSource(o.seed)), //nolint:gosec // clustering seeds need no crypto strength
		logger:      o.logger.WithClusters(numClusters).WithDimension(data.RowBytes() * 8),
		metrics:     o.metricsCollector,
		progress:    rate.Sometimes{First: 1, Interval: progressInterval},
	}
	km.resetAssignments()
	return km, nil
}

func (km *KMajority) resetAssignments() {
	km.belongsTo = make([]int, km.numPoints)
	for i := range km.belongsTo {
		km.belongsTo[i] = unassigned
	}
	km.distanceTo = make([]uint32, km.numPoints)
	km.clusterCounts = make([]int, km.numClusters)
	km.members = make([]*roaring.Bitmap, km.numClusters)
	for c := range km.members {
		km.members[c] = roaring.New()
	}
	km.iterations = 0
	km.quantized = false
}

// Cluster runs the clustering loop until assignments stop changing or the
// iteration budget is spent.
//
// If centroids were loaded with LoadVocabulary, initialization is skipped.
// Calling Cluster again after it finished returns the same result.
// After an error the KMajority should be discarded.
func (km *KMajority) Cluster(ctx context.Context) (*Result, error) {
	start := time.Now()
	err := km.cluster(ctx)
	elapsed := time.Since(start)

	km.metrics.RecordRun(km.iterations, km.state, elapsed, err)
	km.logger.LogRun(ctx, km.iterations, km.state, elapsed, err)
	if err != nil {
		return nil, err
	}
	return km.result(), nil
}

func (km *KMajority) cluster(ctx context.Context) error {
	if km.state.Terminal() {
		return nil
	}
	if km.state == StateUninitialized {
		if err := km.initCentroids(); err != nil {
			return err
		}
		km.state = StateInitialized
	}

	for km.iterations < km.opts.maxIterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		km.state = StateIterating
		roundStart := time.Now()

		converged, changed, err := km.quantize(ctx)
		if err != nil {
			return err
		}
		if converged {
			km.state = StateConverged
			break
		}

		recovered, err := km.handleEmptyClusters(ctx)
		if err != nil {
			return err
		}
		if err := km.computeCentroids(ctx); err != nil {
			return err
		}
		km.iterations++

		km.logger.LogRound(ctx, km.iterations, changed, recovered, time.Since(roundStart))
		km.progress.Do(func() {
			km.logger.InfoContext(ctx, "clustering progress",
				"iteration", km.iterations,
				"max_iterations", km.opts.maxIterations,
				"changed", changed,
			)
		})
	}

	if km.state != StateConverged {
		km.state = StateMaxIterationsReached
	}
	return nil
}

// Result is the outcome of a clustering run. All slices are copies.
type Result struct {
	Centroids     [][]byte
	Assignments   []int
	Distances     []uint32
	ClusterCounts []int
	Iterations    int
	State         State
}

// Converged reports whether the run stopped because assignments were stable.
func (r *Result) Converged() bool {
	return r.State == StateConverged
}

func (km *KMajority) result() *Result {
	return &Result{
		Centroids:     km.Centroids(),
		Assignments:   km.Assignments(),
		Distances:     km.Distances(),
		ClusterCounts: km.ClusterCounts(),
		Iterations:    km.iterations,
		State:         km.state,
	}
}

// Centroids returns a copy of the current centroid matrix, or nil before
// initialization.
func (km *KMajority) Centroids() [][]byte {
	if km.centroids == nil {
		return nil
	}
	return copyRows(km.centroids, km.rowBytes)
}

// ClusterCounts returns a copy of the per-cluster populations.
func (km *KMajority) ClusterCounts() []int {
	return append([]int(nil), km.clusterCounts...)
}

// Assignments returns a copy of the per-point cluster indices.
// Points not yet quantized hold -1.
func (km *KMajority) Assignments() []int {
	return append([]int(nil), km.belongsTo...)
}

// Distances returns a copy of the per-point Hamming distances to the
// assigned centroid.
func (km *KMajority) Distances() []uint32 {
	return append([]uint32(nil), km.distanceTo...)
}

// State returns the current lifecycle stage.
func (km *KMajority) State() State { return km.state }

// Iterations returns the number of completed rounds.
func (km *KMajority) Iterations() int { return km.iterations }

// NumClusters returns the number of clusters.
func (km *KMajority) NumClusters() int { return km.numClusters }

// copyRows deep-copies equal-length rows into one contiguous buffer.
func copyRows(rows [][]byte, rowBytes int) [][]byte {
	buf := make([]byte, len(rows)*rowBytes)
	out := make([][]byte, len(rows))
	for i, r := range rows {
		out[i] = buf[i*rowBytes : (i+1)*rowBytes : (i+1)*rowBytes]
		copy(out[i], r)
	}
	return out
}
