package kmajority

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/kmajority/blobstore"
	"github.com/hupe1980/kmajority/dataset"
	"github.com/hupe1980/kmajority/nn"
	"github.com/hupe1980/kmajority/vocabulary"
)

// Vocabulary returns the current centroids as a vocabulary.
func (km *KMajority) Vocabulary() (*vocabulary.Vocabulary, error) {
	if km.centroids == nil {
		return nil, ErrNoCentroids
	}
	return vocabulary.New(km.centroids)
}

// SaveVocabulary persists the current centroids under name.
func (km *KMajority) SaveVocabulary(ctx context.Context, store blobstore.Store, name string, optFns ...func(*vocabulary.Options)) error {
	v, err := km.Vocabulary()
	if err == nil {
		err = vocabulary.Save(ctx, store, name, v, optFns...)
	}
	km.logger.LogVocabulary(ctx, "saved", name, err)
	return err
}

// LoadVocabulary replaces the centroids with the vocabulary stored under
// name. The next Cluster call skips initialization and refines the loaded
// centroids.
func (km *KMajority) LoadVocabulary(ctx context.Context, store blobstore.Store, name string) error {
	v, err := vocabulary.Load(ctx, store, name)
	if err == nil {
		err = km.SetVocabulary(v)
	}
	km.logger.LogVocabulary(ctx, "loaded", name, err)
	return err
}

// SetVocabulary installs v as the centroid matrix and resets the run to the
// initialized state. The cluster count becomes v.NumClusters().
func (km *KMajority) SetVocabulary(v *vocabulary.Vocabulary) error {
	if v == nil {
		return &ConfigurationError{Param: "vocabulary", Value: nil, Reason: "vocabulary is required"}
	}
	if v.RowBytes() != km.rowBytes {
		return &ConfigurationError{
			Param:  "bitLength",
			Value:  v.BitLength(),
			Reason: fmt.Sprintf("vocabulary does not match dataset bit length %d", km.rowBytes*8),
		}
	}
	if v.NumClusters() > km.numPoints {
		return &InsufficientDataError{
			Points:   km.numPoints,
			Clusters: v.NumClusters(),
			Reason:   "more clusters than data points",
			atConfig: true,
		}
	}

	km.numClusters = v.NumClusters()
	km.centroids = copyRows(v.Centroids(), km.rowBytes)
	km.resetAssignments()
	km.state = StateInitialized
	return nil
}

// Assignment is the result of quantizing data against a fixed vocabulary.
type Assignment struct {
	Assignments   []int
	Distances     []uint32
	ClusterCounts []int
}

// Assign maps every row of data to its nearest centroid in v without
// modifying v. Only the index, worker, logger and metrics options apply.
func Assign(ctx context.Context, v *vocabulary.Vocabulary, data dataset.Matrix, optFns ...Option) (*Assignment, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &ConfigurationError{Param: "vocabulary", Value: nil, Reason: "vocabulary is required"}
	}
	if data == nil {
		return nil, &ConfigurationError{Param: "data", Value: nil, Reason: "dataset is required"}
	}
	if data.RowBytes() != v.RowBytes() {
		return nil, &ConfigurationError{
			Param:  "bitLength",
			Value:  data.RowBytes() * 8,
			Reason: fmt.Sprintf("dataset does not match vocabulary bit length %d", v.BitLength()),
		}
	}

	start := time.Now()
	index, err := nn.New(o.indexType, v.Centroids(), o.indexOptions...)
	if err != nil {
		return nil, err
	}

	n := data.Rows()
	a := &Assignment{
		Assignments:   make([]int, n),
		Distances:     make([]uint32, n),
		ClusterCounts: make([]int, v.NumClusters()),
	}
	for i := range a.Assignments {
		a.Assignments[i] = unassigned
	}
	// Every point starts unassigned, so assignPoints reports all n as changed.
	// Nothing was reassigned relative to a previous round.
	if _, err := assignPoints(ctx, index, data, a.Assignments, a.Distances, o.workers); err != nil {
		return nil, err
	}
	for _, c := range a.Assignments {
		a.ClusterCounts[c]++
	}

	o.metricsCollector.RecordQuantize(n, 0, time.Since(start))
	o.logger.DebugContext(ctx, "assigned points to vocabulary",
		"points", n,
		"clusters", v.NumClusters(),
		"duration", time.Since(start),
	)
	return a, nil
}
