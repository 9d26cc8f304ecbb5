package nn

import (
	"math"

	"github.com/hupe1980/kmajority/bitvec"
)

// LinearIndex is an exhaustive-scan index.
type LinearIndex struct {
	refs     [][]byte
	rowBytes int
}

// NewLinear creates a linear index. refs must be non-empty and equal-length.
func NewLinear(refs [][]byte) *LinearIndex {
	return &LinearIndex{refs: refs, rowBytes: len(refs[0])}
}

// Nearest implements Index.
func (l *LinearIndex) Nearest(query []byte) (Neighbor, error) {
	if err := checkQuery(query, l.rowBytes); err != nil {
		return Neighbor{}, err
	}

	best := Neighbor{Index: -1, Distance: math.MaxUint32}
	for i, r := range l.refs {
		d := bitvec.Hamming(query, r)
		if d < best.Distance {
			best = Neighbor{Index: i, Distance: d}
			if d == 0 {
				break
			}
		}
	}
	return best, nil
}

// Len implements Index.
func (l *LinearIndex) Len() int {
	return len(l.refs)
}
