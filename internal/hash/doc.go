// Package hash computes the CRC32C checksums that protect vocabularies:
// the checksum field of the vocabulary header and the x-amz-checksum-crc32c
// value sent with S3 uploads. The stdlib uses SSE4.2 or the ARM CRC
// extension when available.
package hash
