package dataset

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kmajority/internal/mmap"
)

// ErrInvalidShape is returned when data cannot be viewed as equal-length rows.
var ErrInvalidShape = errors.New("dataset: invalid shape")

// Matrix is a read-only row-major collection of fixed-length descriptors.
type Matrix interface {
	// Rows returns the number of descriptors.
	Rows() int
	// RowBytes returns the length of each descriptor in bytes.
	RowBytes() int
	// Row returns descriptor i. The slice must not be modified.
	Row(i int) []byte
}

// Dense is an in-memory Matrix over a contiguous buffer.
type Dense struct {
	data     []byte
	rowBytes int
}

// FromBytes views data as rows of rowBytes bytes without copying.
func FromBytes(data []byte, rowBytes int) (*Dense, error) {
	if rowBytes <= 0 {
		return nil, fmt.Errorf("%w: row length %d", ErrInvalidShape, rowBytes)
	}
	if len(data)%rowBytes != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of row length %d", ErrInvalidShape, len(data), rowBytes)
	}
	return &Dense{data: data, rowBytes: rowBytes}, nil
}

// NewDense copies rows into a contiguous matrix.
func NewDense(rows [][]byte) (*Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidShape)
	}
	rowBytes := len(rows[0])
	data := make([]byte, 0, len(rows)*rowBytes)
	for i, r := range rows {
		if len(r) != rowBytes {
			return nil, fmt.Errorf("%w: row %d has %d bytes, want %d", ErrInvalidShape, i, len(r), rowBytes)
		}
		data = append(data, r...)
	}
	return FromBytes(data, rowBytes)
}

// Rows implements Matrix.
func (d *Dense) Rows() int {
	return len(d.data) / d.rowBytes
}

// RowBytes implements Matrix.
func (d *Dense) RowBytes() int {
	return d.rowBytes
}

// Row implements Matrix.
func (d *Dense) Row(i int) []byte {
	off := i * d.rowBytes
	return d.data[off : off+d.rowBytes : off+d.rowBytes]
}

// File is a Matrix backed by a read-only memory-mapped file of raw,
// row-major descriptors.
type File struct {
	Dense
	m *mmap.Mapping
}

// OpenFile maps path and views it as rows of rowBytes bytes.
func OpenFile(path string, rowBytes int) (*File, error) {
	m, err := mmap.Open(path, mmap.AccessSequential)
	if err != nil {
		return nil, err
	}
	d, err := FromBytes(m.Bytes(), rowBytes)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return &File{Dense: *d, m: m}, nil
}

// Close unmaps the file. Rows returned earlier become invalid.
func (f *File) Close() error {
	return f.m.Close()
}
