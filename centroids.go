package kmajority

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kmajority/bitvec"
)

// computeCentroids replaces the centroid matrix with the per-bit majority of
// each cluster's members. Clusters are processed in parallel, each worker
// writing only its own row.
func (km *KMajority) computeCentroids(ctx context.Context) error {
	start := time.Now()

	buf := make([]byte, km.numClusters*km.rowBytes)
	next := make([][]byte, km.numClusters)
	for c := range next {
		next[c] = buf[c*km.rowBytes : (c+1)*km.rowBytes : (c+1)*km.rowBytes]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(km.opts.workers)
	for c := range km.numClusters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			count := km.clusterCounts[c]
			if count == 0 {
				copy(next[c], km.centroids[c])
				return nil
			}
			acc := bitvec.NewAccumulator(km.rowBytes)
			it := km.members[c].Iterator()
			for it.HasNext() {
				acc.Add(km.data.Row(int(it.Next())))
			}
			bitvec.MajorityVoteInto(next[c], acc, count)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	km.centroids = next
	km.metrics.RecordRecompute(km.numClusters, time.Since(start))
	return nil
}
