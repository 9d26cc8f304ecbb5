package nn

import (
	"cmp"
	"math"
	"slices"

	"github.com/hupe1980/kmajority/bitvec"
)

// HierarchicalIndex is a pivot tree over the reference set.
//
// Every inner node partitions its references around up to Branching pivots
// chosen by farthest-first traversal. Each child records its covering radius,
// the largest distance from the pivot to any reference below it.
type HierarchicalIndex struct {
	refs     [][]byte
	rowBytes int
	root     *node
}

type node struct {
	pivot    int    // reference index of the pivot
	radius   uint32 // max distance from pivot to any member
	children []*node
	members  []int // set on leaves only, ascending
}

// NewHierarchical builds a hierarchical index. refs must be non-empty and
// equal-length. Construction is deterministic.
func NewHierarchical(refs [][]byte, opts Options) *HierarchicalIndex {
	h := &HierarchicalIndex{refs: refs, rowBytes: len(refs[0])}

	all := make([]int, len(refs))
	for i := range all {
		all[i] = i
	}
	h.root = h.build(all, 0, opts)
	return h
}

func (h *HierarchicalIndex) build(members []int, pivot int, opts Options) *node {
	n := &node{pivot: pivot}
	for _, m := range members {
		n.radius = max(n.radius, bitvec.Hamming(h.refs[pivot], h.refs[m]))
	}

	if len(members) <= opts.LeafSize {
		n.members = members
		return n
	}

	pivots := h.selectPivots(members, opts.Branching)
	if len(pivots) < 2 {
		// All members are identical; nothing to split.
		n.members = members
		return n
	}

	groups := make([][]int, len(pivots))
	for _, m := range members {
		best, bestDist := 0, uint32(math.MaxUint32)
		for pi, p := range pivots {
			if d := bitvec.Hamming(h.refs[m], h.refs[p]); d < bestDist {
				best, bestDist = pi, d
			}
		}
		groups[best] = append(groups[best], m)
	}

	n.children = make([]*node, len(pivots))
	for pi, p := range pivots {
		n.children[pi] = h.build(groups[pi], p, opts)
	}
	return n
}

// selectPivots runs farthest-first traversal starting at the lowest member.
// It stops early once every remaining member coincides with a pivot.
func (h *HierarchicalIndex) selectPivots(members []int, k int) []int {
	pivots := []int{members[0]}
	minDist := make([]uint32, len(members))
	for i, m := range members {
		minDist[i] = bitvec.Hamming(h.refs[m], h.refs[members[0]])
	}

	for len(pivots) < k {
		far, farDist := -1, uint32(0)
		for i, d := range minDist {
			if d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			break
		}
		p := members[far]
		pivots = append(pivots, p)
		for i, m := range members {
			minDist[i] = min(minDist[i], bitvec.Hamming(h.refs[m], h.refs[p]))
		}
	}
	return pivots
}

type candidate struct {
	n     *node
	bound uint32
}

// Nearest implements Index.
func (h *HierarchicalIndex) Nearest(query []byte) (Neighbor, error) {
	if err := checkQuery(query, h.rowBytes); err != nil {
		return Neighbor{}, err
	}
	best := Neighbor{Index: -1, Distance: math.MaxUint32}
	h.search(h.root, query, &best)
	return best, nil
}

func (h *HierarchicalIndex) search(n *node, query []byte, best *Neighbor) {
	if n.children == nil {
		for _, m := range n.members {
			if d := bitvec.Hamming(query, h.refs[m]); best.better(m, d) {
				*best = Neighbor{Index: m, Distance: d}
			}
		}
		return
	}

	cands := make([]candidate, len(n.children))
	for i, c := range n.children {
		d := bitvec.Hamming(query, h.refs[c.pivot])
		var bound uint32
		if d > c.radius {
			bound = d - c.radius
		}
		cands[i] = candidate{n: c, bound: bound}
	}
	slices.SortStableFunc(cands, func(a, b candidate) int {
		return cmp.Compare(a.bound, b.bound)
	})

	for _, c := range cands {
		// Strict comparison keeps equal-distance subtrees reachable for the
		// lowest-index tie-break.
		if c.bound > best.Distance {
			break
		}
		h.search(c.n, query, best)
	}
}

// Len implements Index.
func (h *HierarchicalIndex) Len() int {
	return len(h.refs)
}
