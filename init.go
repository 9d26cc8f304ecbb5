package kmajority

import (
	"github.com/hupe1980/kmajority/bitvec"
)

// initCentroids seeds the centroid matrix with numClusters distinct data
// points chosen by the configured strategy.
func (km *KMajority) initCentroids() error {
	var picks []int
	switch km.opts.initMethod {
	case InitRandom:
		picks = km.rng.Perm(km.numPoints)[:km.numClusters]
	case InitGonzales:
		picks = km.initGonzales()
	case InitKMeansPP:
		picks = km.initKMeansPP()
	default:
		return &ConfigurationError{Param: "initMethod", Value: km.opts.initMethod, Reason: "unknown initialization method"}
	}

	rows := make([][]byte, len(picks))
	for c, i := range picks {
		rows[c] = km.data.Row(i)
	}
	km.centroids = copyRows(rows, km.rowBytes)
	return nil
}

// initGonzales picks a random first point, then repeatedly the point whose
// distance to its closest chosen centroid is largest. Ties go to the lowest
// index. Once every remaining point duplicates a chosen one, the lowest
// unchosen indices are used.
func (km *KMajority) initGonzales() []int {
	n := km.numPoints
	chosen := make([]bool, n)
	picks := make([]int, 0, km.numClusters)

	first := km.rng.Intn(n)
	chosen[first] = true
	picks = append(picks, first)

	closest := make([]uint32, n)
	for i := range n {
		closest[i] = bitvec.Hamming(km.data.Row(i), km.data.Row(first))
	}

	for len(picks) < km.numClusters {
		best := -1
		for i := range n {
			if chosen[i] {
				continue
			}
			if best < 0 || closest[i] > closest[best] {
				best = i
			}
		}
		chosen[best] = true
		picks = append(picks, best)
		km.tightenClosest(closest, best)
	}
	return picks
}

// initKMeansPP samples each further point with probability proportional to
// the squared distance to its closest chosen centroid.
func (km *KMajority) initKMeansPP() []int {
	n := km.numPoints
	chosen := make([]bool, n)
	picks := make([]int, 0, km.numClusters)

	first := km.rng.Intn(n)
	chosen[first] = true
	picks = append(picks, first)

	closest := make([]uint32, n)
	for i := range n {
		closest[i] = bitvec.Hamming(km.data.Row(i), km.data.Row(first))
	}

	for len(picks) < km.numClusters {
		var total float64
		for i := range n {
			if !chosen[i] {
				d := float64(closest[i])
				total += d * d
			}
		}

		next := -1
		if total > 0 {
			r := km.rng.Float64() * total
			for i := range n {
				if chosen[i] || closest[i] == 0 {
					continue
				}
				d := float64(closest[i])
				r -= d * d
				next = i
				if r < 0 {
					break
				}
			}
		} else {
			// Only duplicates of chosen points remain.
			free := make([]int, 0, n-len(picks))
			for i := range n {
				if !chosen[i] {
					free = append(free, i)
				}
			}
			next = free[km.rng.Intn(len(free))]
		}

		chosen[next] = true
		picks = append(picks, next)
		km.tightenClosest(closest, next)
	}
	return picks
}

func (km *KMajority) tightenClosest(closest []uint32, center int) {
	row := km.data.Row(center)
	for i := range closest {
		if d := bitvec.Hamming(km.data.Row(i), row); d < closest[i] {
			closest[i] = d
		}
	}
}
