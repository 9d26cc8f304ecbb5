// Package mmap maps descriptor datasets and stored vocabularies read-only.
//
// Mappings are PROT_READ, so writing through a borrowed dataset row faults
// instead of silently corrupting the input. The access hint is chosen once
// at Open: sequential for descriptor files that every quantization pass
// scans in order, will-need for vocabulary blobs that are decoded at once.
//
//	m, err := mmap.Open("descriptors.bin", mmap.AccessSequential)
//	if err != nil { ... }
//	defer m.Close()
//	row, _ := m.Section(i*32, 32)
//
// On non-unix platforms the file is read into memory instead.
package mmap
