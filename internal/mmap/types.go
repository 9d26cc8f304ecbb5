package mmap

import "errors"

// AccessPattern is the madvise hint applied when a file is mapped.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	// AccessSequential suits descriptor files scanned front to back on
	// every quantization pass.
	AccessSequential
	AccessRandom
	// AccessWillNeed suits small blobs that are read in full right away.
	AccessWillNeed
)

var (
	ErrClosed        = errors.New("mmap: mapping is closed")
	ErrInvalidSize   = errors.New("mmap: invalid file size")
	ErrInvalidOffset = errors.New("mmap: invalid offset")
	ErrOutOfBounds   = errors.New("mmap: section out of bounds")
)
