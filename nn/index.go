package nn

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyReferences is returned when building an index without references.
	ErrEmptyReferences = errors.New("nn: empty reference set")
	// ErrUnknownType is returned for an unsupported index type.
	ErrUnknownType = errors.New("nn: unknown index type")
)

// ErrDimensionMismatch indicates a descriptor whose byte length differs from
// the reference set.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("nn: dimension mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
}

// Type selects the nearest-neighbor strategy.
type Type int

const (
	// Linear scans every reference.
	Linear Type = iota
	// Hierarchical searches a pivot tree.
	Hierarchical
)

func (t Type) String() string {
	switch t {
	case Linear:
		return "linear"
	case Hierarchical:
		return "hierarchical"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Neighbor is the result of a nearest-neighbor query.
type Neighbor struct {
	Index    int
	Distance uint32
}

// better reports whether (idx, dist) beats n under the lowest-index tie-break.
func (n Neighbor) better(idx int, dist uint32) bool {
	return dist < n.Distance || (dist == n.Distance && idx < n.Index)
}

// Index answers nearest-neighbor queries against a fixed reference set.
type Index interface {
	// Nearest returns the reference closest to query.
	Nearest(query []byte) (Neighbor, error)
	// Len returns the number of references.
	Len() int
}

// Options configures index construction.
type Options struct {
	// Branching is the maximum number of children per hierarchical node.
	Branching int
	// LeafSize is the maximum number of references held by a hierarchical leaf.
	LeafSize int
}

// DefaultOptions contains the default index options.
var DefaultOptions = Options{
	Branching: 32,
	LeafSize:  64,
}

// Option mutates Options.
type Option func(*Options)

// WithBranching sets the hierarchical branching factor. Values below 2 are ignored.
func WithBranching(b int) Option {
	return func(o *Options) {
		if b >= 2 {
			o.Branching = b
		}
	}
}

// WithLeafSize sets the hierarchical leaf capacity. Values below 1 are ignored.
func WithLeafSize(n int) Option {
	return func(o *Options) {
		if n >= 1 {
			o.LeafSize = n
		}
	}
}

// New builds an index of type t over refs.
//
// refs is borrowed: the caller must not modify it while the index is in use.
func New(t Type, refs [][]byte, optFns ...Option) (Index, error) {
	if len(refs) == 0 {
		return nil, ErrEmptyReferences
	}
	rowBytes := len(refs[0])
	for _, r := range refs[1:] {
		if len(r) != rowBytes {
			return nil, &ErrDimensionMismatch{Expected: rowBytes, Actual: len(r)}
		}
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	switch t {
	case Linear:
		return NewLinear(refs), nil
	case Hierarchical:
		return NewHierarchical(refs, opts), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
}

func checkQuery(query []byte, rowBytes int) error {
	if len(query) != rowBytes {
		return &ErrDimensionMismatch{Expected: rowBytes, Actual: len(query)}
	}
	return nil
}
