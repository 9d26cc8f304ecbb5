//go:build !unix

package mmap

import (
	"io"
	"os"
)

// osMap reads the file into memory where mmap is unavailable. The pattern
// has no effect.
func osMap(f *os.File, size int, _ AccessPattern) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}
