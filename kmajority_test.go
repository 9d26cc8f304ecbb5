package kmajority

import (
	"context"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmajority/dataset"
	"github.com/hupe1980/kmajority/nn"
	"github.com/hupe1980/kmajority/testutil"
)

func denseData(t *testing.T, rows [][]byte) *dataset.Dense {
	t.Helper()
	d, err := dataset.NewDense(rows)
	require.NoError(t, err)
	return d
}

func eightByEight() [][]byte {
	return [][]byte{
		{0x00}, {0x01}, {0x03}, {0x07},
		{0xF0}, {0xF8}, {0xFC}, {0xFF},
	}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestNew_Validation(t *testing.T) {
	data := denseData(t, eightByEight())

	tests := []struct {
		name    string
		k       int
		data    dataset.Matrix
		opts    []Option
		wantErr error
	}{
		{"zero clusters", 0, data, nil, ErrConfiguration},
		{"negative clusters", -1, data, nil, ErrConfiguration},
		{"nil data", 2, nil, nil, ErrConfiguration},
		{"zero iterations", 2, data, []Option{WithMaxIterations(0)}, ErrConfiguration},
		{"unknown init", 2, data, []Option{WithInitMethod(InitMethod(9))}, ErrConfiguration},
		{"unknown index", 2, data, []Option{WithIndexType(nn.Type(9))}, ErrConfiguration},
		{"more clusters than points", 9, data, nil, ErrInsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.k, tt.data, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_TooManyClustersIsAlsoConfigurationError(t *testing.T) {
	_, err := New(9, denseData(t, eightByEight()))

	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 8, ide.Points)
	assert.Equal(t, 9, ide.Clusters)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNew_Defaults(t *testing.T) {
	km, err := New(2, denseData(t, eightByEight()))
	require.NoError(t, err)

	assert.Equal(t, StateUninitialized, km.State())
	assert.Equal(t, DefaultMaxIterations, km.opts.maxIterations)
	assert.Equal(t, InitRandom, km.opts.initMethod)
	assert.Equal(t, nn.Linear, km.opts.indexType)
	assert.Positive(t, km.opts.workers)
	assert.Nil(t, km.Centroids())
	for _, a := range km.Assignments() {
		assert.Equal(t, unassigned, a)
	}
}

func TestCluster_EightByEight(t *testing.T) {
	run := func() *Result {
		km, err := New(2, denseData(t, eightByEight()), WithMaxIterations(10), WithSeed(42))
		require.NoError(t, err)
		res, err := km.Cluster(context.Background())
		require.NoError(t, err)
		return res
	}

	first := run()
	assert.LessOrEqual(t, first.Iterations, 10)
	assert.True(t, first.State.Terminal())
	require.Len(t, first.Assignments, 8)
	for _, a := range first.Assignments {
		assert.Contains(t, []int{0, 1}, a)
	}
	assert.Equal(t, 8, sum(first.ClusterCounts))

	second := run()
	assert.Equal(t, first.Centroids, second.Centroids)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Iterations, second.Iterations)
}

func TestCluster_OnePointPerCluster(t *testing.T) {
	rows := testutil.NewRNG(7).UniformDescriptors(6, 4)
	km, err := New(6, denseData(t, rows), WithSeed(1))
	require.NoError(t, err)

	res, err := km.Cluster(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateConverged, res.State)
	assert.True(t, res.Converged())
	assert.Equal(t, 1, res.Iterations)
	for i, c := range res.Assignments {
		assert.Equal(t, rows[i], res.Centroids[c], "centroid equals its sole member")
		assert.Zero(t, res.Distances[i])
	}
	for _, n := range res.ClusterCounts {
		assert.Equal(t, 1, n)
	}
}

func TestCluster_MaxIterationsReached(t *testing.T) {
	rows := testutil.NewRNG(3).UniformDescriptors(200, 8)
	km, err := New(20, denseData(t, rows), WithMaxIterations(1), WithSeed(3))
	require.NoError(t, err)

	res, err := km.Cluster(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateMaxIterationsReached, res.State)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 200, sum(res.ClusterCounts))
}

func TestCluster_SecondCallReturnsSameResult(t *testing.T) {
	km, err := New(2, denseData(t, eightByEight()), WithSeed(5))
	require.NoError(t, err)

	first, err := km.Cluster(context.Background())
	require.NoError(t, err)
	second, err := km.Cluster(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCluster_IndexTypesAgree(t *testing.T) {
	rows := testutil.NewRNG(11).ClusteredDescriptors(600, 32, 12, 0.1)

	results := make(map[nn.Type]*Result)
	for _, typ := range []nn.Type{nn.Linear, nn.Hierarchical} {
		km, err := New(12, denseData(t, rows),
			WithSeed(99),
			WithMaxIterations(15),
			WithIndexType(typ),
			WithIndexOptions(nn.WithBranching(3), nn.WithLeafSize(2)),
		)
		require.NoError(t, err)
		res, err := km.Cluster(context.Background())
		require.NoError(t, err)
		results[typ] = res
	}

	assert.Equal(t, results[nn.Linear], results[nn.Hierarchical])
}

func TestCluster_WorkerCountDoesNotChangeResult(t *testing.T) {
	rows := testutil.NewRNG(12).ClusteredDescriptors(1500, 16, 8, 0.15)

	var want *Result
	for _, workers := range []int{1, 3, 8} {
		km, err := New(8, denseData(t, rows), WithSeed(4), WithWorkers(workers))
		require.NoError(t, err)
		res, err := km.Cluster(context.Background())
		require.NoError(t, err)
		if want == nil {
			want = res
			continue
		}
		assert.Equal(t, want, res, "workers=%d", workers)
	}
}

func TestCluster_InitMethods(t *testing.T) {
	rows := testutil.NewRNG(21).ClusteredDescriptors(300, 8, 5, 0.05)
	for _, m := range []InitMethod{InitRandom, InitGonzales, InitKMeansPP} {
		t.Run(m.String(), func(t *testing.T) {
			km, err := New(5, denseData(t, rows), WithSeed(8), WithInitMethod(m))
			require.NoError(t, err)
			require.NoError(t, km.initCentroids())
			assert.Len(t, km.centroids, 5)

			res, err := km.Cluster(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 300, sum(res.ClusterCounts))
			for _, n := range res.ClusterCounts {
				assert.Positive(t, n)
			}
		})
	}
}

func TestInit_DistinctPointsWithDuplicates(t *testing.T) {
	rows := [][]byte{{0xAA}, {0xAA}, {0xAA}, {0x55}, {0xAA}}
	for _, m := range []InitMethod{InitRandom, InitGonzales, InitKMeansPP} {
		t.Run(m.String(), func(t *testing.T) {
			km, err := New(4, denseData(t, rows), WithSeed(2), WithInitMethod(m))
			require.NoError(t, err)

			var picks []int
			switch m {
			case InitRandom:
				picks = km.rng.Perm(km.numPoints)[:km.numClusters]
			case InitGonzales:
				picks = km.initGonzales()
			case InitKMeansPP:
				picks = km.initKMeansPP()
			}
			require.Len(t, picks, 4)
			seen := make(map[int]bool)
			for _, p := range picks {
				assert.False(t, seen[p], "point %d picked twice", p)
				seen[p] = true
			}
		})
	}
}

func TestInitGonzales_PicksFarthest(t *testing.T) {
	rows := [][]byte{{0x00}, {0x01}, {0xFF}, {0x0F}}
	km, err := New(2, denseData(t, rows), WithSeed(1))
	require.NoError(t, err)

	picks := km.initGonzales()
	first := picks[0]
	// 0x0F is equidistant from 0x00 and 0xFF; the lower index wins.
	want := map[int]int{0: 2, 1: 2, 2: 0, 3: 0}
	assert.Equal(t, want[first], picks[1])
}

func TestCluster_CanceledContext(t *testing.T) {
	km, err := New(2, denseData(t, eightByEight()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = km.Cluster(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCluster_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	km, err := New(2, denseData(t, eightByEight()), WithSeed(42), WithMetricsCollector(mc))
	require.NoError(t, err)

	res, err := km.Cluster(context.Background())
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(res.Iterations), stats.TotalIterations)
	assert.Equal(t, int64(res.Iterations), stats.RecomputeCount)
	if res.Converged() {
		assert.Equal(t, int64(res.Iterations+1), stats.QuantizeCount)
		assert.Equal(t, int64(1), stats.RunsConverged)
	} else {
		assert.Equal(t, int64(res.Iterations), stats.QuantizeCount)
		assert.Equal(t, int64(1), stats.RunsExhausted)
	}
	assert.GreaterOrEqual(t, stats.ChangedPoints, int64(8))
}

func TestQuantize_SecondPassConverges(t *testing.T) {
	rows := testutil.NewRNG(5).UniformDescriptors(100, 8)
	km, err := New(7, denseData(t, rows), WithSeed(5))
	require.NoError(t, err)
	require.NoError(t, km.initCentroids())

	converged, changed, err := km.quantize(context.Background())
	require.NoError(t, err)
	assert.False(t, converged, "first pass never converges")
	assert.Equal(t, 100, changed)
	first := km.Assignments()
	assert.Equal(t, 100, sum(km.ClusterCounts()))

	converged, changed, err = km.quantize(context.Background())
	require.NoError(t, err)
	assert.True(t, converged)
	assert.Zero(t, changed)
	assert.Equal(t, first, km.Assignments())
	assert.Equal(t, 100, sum(km.ClusterCounts()))
}

func TestQuantize_MembersMatchAssignments(t *testing.T) {
	rows := testutil.NewRNG(6).UniformDescriptors(64, 4)
	km, err := New(5, denseData(t, rows), WithSeed(6))
	require.NoError(t, err)
	require.NoError(t, km.initCentroids())
	_, _, err = km.quantize(context.Background())
	require.NoError(t, err)

	for c := range km.numClusters {
		assert.Equal(t, uint64(km.clusterCounts[c]), km.members[c].GetCardinality())
		it := km.members[c].Iterator()
		for it.HasNext() {
			assert.Equal(t, c, km.belongsTo[it.Next()])
		}
	}
}

// emptyClusterEngine returns an engine whose third centroid duplicates the
// second, so quantization leaves cluster 2 empty.
func emptyClusterEngine(t *testing.T, rows [][]byte) *KMajority {
	t.Helper()
	km, err := New(3, denseData(t, rows), WithSeed(1))
	require.NoError(t, err)
	km.centroids = [][]byte{{0x00}, {0xFF}, {0xFF}}
	_, _, err = km.quantize(context.Background())
	require.NoError(t, err)
	require.Zero(t, km.clusterCounts[2])
	return km
}

func TestHandleEmptyClusters(t *testing.T) {
	km := emptyClusterEngine(t, [][]byte{{0x00}, {0x01}, {0x03}, {0xFF}})
	require.Equal(t, []int{3, 1, 0}, km.clusterCounts)

	recovered, err := km.handleEmptyClusters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, recovered)

	// 0x03 is the donor member farthest from 0x00.
	assert.Equal(t, []int{0, 0, 2, 1}, km.belongsTo)
	assert.Equal(t, uint32(6), km.distanceTo[2])
	assert.Equal(t, []int{2, 1, 1}, km.clusterCounts)
	assert.True(t, km.members[2].Contains(2))
	assert.False(t, km.members[0].Contains(2))
	assert.Equal(t, 4, sum(km.clusterCounts))
}

func TestHandleEmptyClusters_TieGoesToLowestIndex(t *testing.T) {
	km := emptyClusterEngine(t, [][]byte{{0x00}, {0x03}, {0x05}, {0xFF}})

	_, err := km.handleEmptyClusters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, km.belongsTo[1])
	assert.Equal(t, 0, km.belongsTo[2])
}

func TestHandleEmptyClusters_DonorTieGoesToLowestIndex(t *testing.T) {
	km, err := New(3, denseData(t, [][]byte{{0x00}, {0x01}, {0xFF}, {0xFE}}), WithSeed(1))
	require.NoError(t, err)
	km.centroids = [][]byte{{0x00}, {0xFF}, {0xFF}}
	_, _, err = km.quantize(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 0}, km.clusterCounts)

	_, err = km.handleEmptyClusters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, km.belongsTo[1], "donor is cluster 0")
	assert.Equal(t, []int{1, 2, 1}, km.clusterCounts)
}

func TestHandleEmptyClusters_InsufficientData(t *testing.T) {
	km, err := New(2, denseData(t, [][]byte{{0x00}, {0xFF}}), WithSeed(1))
	require.NoError(t, err)
	require.NoError(t, km.initCentroids())
	_, _, err = km.quantize(context.Background())
	require.NoError(t, err)

	// Grow to three clusters behind the engine's back.
	km.numClusters = 3
	km.centroids = append(km.centroids, []byte{0x0F})
	km.clusterCounts = append(km.clusterCounts, 0)
	km.members = append(km.members, roaring.New())

	_, err = km.handleEmptyClusters(context.Background())
	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.NotErrorIs(t, err, ErrConfiguration)
}

func TestCluster_DuplicatePointsNeverLeaveEmptyClusters(t *testing.T) {
	rows := [][]byte{{0x0F}, {0x0F}, {0x0F}, {0xF0}, {0xF0}, {0x3C}}
	km, err := New(3, denseData(t, rows), WithSeed(10), WithMaxIterations(5))
	require.NoError(t, err)

	res, err := km.Cluster(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, sum(res.ClusterCounts))
	for _, n := range res.ClusterCounts {
		assert.Positive(t, n)
	}
}

func TestComputeCentroids(t *testing.T) {
	rows := [][]byte{{0xF0}, {0xC0}, {0x80}, {0x0F}}
	km, err := New(2, denseData(t, rows), WithSeed(1))
	require.NoError(t, err)
	km.centroids = [][]byte{{0xFF}, {0x00}}
	km.belongsTo = []int{0, 0, 0, 1}
	km.recount()

	require.NoError(t, km.computeCentroids(context.Background()))
	// Bit 0 is set in 3/3, bit 1 in 2/3, bits 2-3 in 1/3.
	assert.Equal(t, []byte{0xC0}, km.centroids[0])
	assert.Equal(t, []byte{0x0F}, km.centroids[1], "single member is copied")
}

func TestComputeCentroids_ExactHalfIsZero(t *testing.T) {
	rows := [][]byte{{0xF0}, {0x0F}}
	km, err := New(1, denseData(t, rows), WithSeed(1))
	require.NoError(t, err)
	km.centroids = [][]byte{{0xFF}}
	km.belongsTo = []int{0, 0}
	km.recount()

	require.NoError(t, km.computeCentroids(context.Background()))
	assert.Equal(t, []byte{0x00}, km.centroids[0])
}

func TestGetters_ReturnCopies(t *testing.T) {
	km, err := New(2, denseData(t, eightByEight()), WithSeed(42))
	require.NoError(t, err)
	_, err = km.Cluster(context.Background())
	require.NoError(t, err)

	c := km.Centroids()
	c[0][0] ^= 0xFF
	assert.NotEqual(t, c[0], km.Centroids()[0])

	a := km.Assignments()
	a[0] = 99
	assert.NotEqual(t, 99, km.Assignments()[0])

	counts := km.ClusterCounts()
	counts[0] = -1
	assert.NotEqual(t, -1, km.ClusterCounts()[0])

	assert.Equal(t, 2, km.NumClusters())
	assert.Len(t, km.Distances(), 8)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "converged", StateConverged.String())
	assert.Equal(t, "max_iterations_reached", StateMaxIterationsReached.String())
	assert.Equal(t, "Unknown(42)", State(42).String())
	assert.False(t, StateIterating.Terminal())
}
