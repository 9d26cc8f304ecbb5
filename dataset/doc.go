// Package dataset provides read-only, row-major access to binary descriptors.
//
// A Matrix is a borrowed view: the clustering engine reads rows but never
// modifies them, and callers must keep the backing storage alive and unchanged
// for as long as a clustering run uses it.
//
//	m, err := dataset.OpenFile("orb.bin", 32) // 256-bit descriptors
//	if err != nil { ... }
//	defer m.Close()
package dataset
