// Package vocabulary persists the centroids produced by a clustering run.
//
// # File Layout
//
// All integers are little-endian.
//
//	┌──────────────────────────────────────────────────────────────┐
//	│ Header (32 bytes)                                            │
//	│   Magic       uint32  "KMAJ"                                 │
//	│   Version     uint32                                         │
//	│   NumClusters uint32                                         │
//	│   BitLength   uint32  descriptor length in bits              │
//	│   Compression uint8   0=none 1=lz4 2=zstd                    │
//	│   Padding     [3]byte                                        │
//	│   PayloadSize uint64  stored payload bytes                   │
//	│   Checksum    uint32  CRC32C of the uncompressed centroids   │
//	├──────────────────────────────────────────────────────────────┤
//	│ Payload: NumClusters × BitLength/8 bytes in cluster order,   │
//	│ optionally compressed                                        │
//	└──────────────────────────────────────────────────────────────┘
//
// Only centroids are stored. Assignments can be rebuilt by quantizing data
// against the loaded centroids.
//
// Any structural inconsistency found while decoding is reported as a
// *FormatError matching ErrFormat.
package vocabulary
