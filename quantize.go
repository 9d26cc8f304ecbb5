package kmajority

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kmajority/bitvec"
	"github.com/hupe1980/kmajority/dataset"
	"github.com/hupe1980/kmajority/nn"
)

const (
	// minChunk is the smallest number of points handed to one worker.
	minChunk = 256
	// cancelCheckEvery is how many points a worker assigns between
	// context checks.
	cancelCheckEvery = 1024
)

// quantize assigns every point to its nearest centroid and rebuilds the
// cluster counts and member sets. converged is true when no assignment
// changed, and never on the first call.
func (km *KMajority) quantize(ctx context.Context) (converged bool, changed int, err error) {
	start := time.Now()

	index, err := nn.New(km.opts.indexType, km.centroids, km.opts.indexOptions...)
	if err != nil {
		return false, 0, err
	}
	changed, err = assignPoints(ctx, index, km.data, km.belongsTo, km.distanceTo, km.opts.workers)
	if err != nil {
		return false, 0, err
	}
	km.recount()

	km.metrics.RecordQuantize(km.numPoints, changed, time.Since(start))

	converged = km.quantized && changed == 0
	km.quantized = true
	return converged, changed, nil
}

// assignPoints fills belongsTo and distanceTo with each row's nearest
// reference in index and returns how many entries of belongsTo changed.
// Workers own disjoint index ranges.
func assignPoints(ctx context.Context, index nn.Index, data dataset.Matrix, belongsTo []int, distanceTo []uint32, workers int) (int, error) {
	n := data.Rows()
	if n == 0 {
		return 0, nil
	}
	chunk := max(minChunk, (n+workers-1)/workers)
	numChunks := (n + chunk - 1) / chunk
	changedPerChunk := make([]int, numChunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for c := range numChunks {
		g.Go(func() error {
			lo := c * chunk
			hi := min(lo+chunk, n)
			changed := 0
			for i := lo; i < hi; i++ {
				if (i-lo)%cancelCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				nb, err := index.Nearest(data.Row(i))
				if err != nil {
					return err
				}
				if belongsTo[i] != nb.Index {
					belongsTo[i] = nb.Index
					changed++
				}
				distanceTo[i] = nb.Distance
			}
			changedPerChunk[c] = changed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, c := range changedPerChunk {
		total += c
	}
	return total, nil
}

// recount rebuilds cluster counts and member sets from belongsTo.
func (km *KMajority) recount() {
	for c := range km.clusterCounts {
		km.clusterCounts[c] = 0
		km.members[c].Clear()
	}
	for i, c := range km.belongsTo {
		if c == unassigned {
			continue
		}
		km.clusterCounts[c]++
		km.members[c].Add(uint32(i))
	}
}

// handleEmptyClusters refills every empty cluster with the point farthest
// from the centroid of the currently largest cluster. It returns the number
// of clusters refilled.
func (km *KMajority) handleEmptyClusters(ctx context.Context) (int, error) {
	recovered := 0
	for c := range km.numClusters {
		if km.clusterCounts[c] != 0 {
			continue
		}
		donor := km.largestCluster()
		if km.clusterCounts[donor] <= 1 {
			return recovered, &InsufficientDataError{
				Points:   km.numPoints,
				Clusters: km.numClusters,
				Reason:   "not enough distinct points to fill every cluster",
			}
		}
		victim := km.farthestMember(donor)

		km.belongsTo[victim] = c
		km.distanceTo[victim] = bitvec.Hamming(km.data.Row(victim), km.centroids[c])
		km.members[donor].Remove(uint32(victim))
		km.members[c].Add(uint32(victim))
		km.clusterCounts[donor]--
		km.clusterCounts[c] = 1
		recovered++

		km.logger.LogRecovery(ctx, c, donor, victim, km.distanceTo[victim])
	}
	if recovered > 0 {
		km.metrics.RecordRecovery(recovered)
	}
	return recovered, nil
}

// largestCluster returns the most populated cluster, lowest index on ties.
func (km *KMajority) largestCluster() int {
	best := 0
	for c, count := range km.clusterCounts {
		if count > km.clusterCounts[best] {
			best = c
		}
	}
	return best
}

// farthestMember returns the member of cluster c with the largest distance
// to its centroid, lowest point index on ties.
func (km *KMajority) farthestMember(c int) int {
	best := -1
	var bestDist uint32
	it := km.members[c].Iterator()
	for it.HasNext() {
		i := int(it.Next())
		if best < 0 || km.distanceTo[i] > bestDist {
			best, bestDist = i, km.distanceTo[i]
		}
	}
	return best
}
