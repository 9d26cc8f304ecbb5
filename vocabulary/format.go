package vocabulary

import (
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies vocabulary files (ASCII: "KMAJ").
	MagicNumber = 0x4B4D414A
	// Version is the current file format version.
	Version = 1

	headerSize = 32
)

// Header is the fixed-size header at the start of every vocabulary file.
type Header struct {
	Magic       uint32
	Version     uint32
	NumClusters uint32
	BitLength   uint32
	Compression Compression
	Padding     [3]byte
	PayloadSize uint64
	Checksum    uint32
}

// ErrFormat is matched by every *FormatError.
var ErrFormat = errors.New("invalid vocabulary format")

// FormatError reports a persisted vocabulary whose contents are inconsistent.
type FormatError struct {
	Reason string
	cause  error
}

func newFormatError(cause error, format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...), cause: cause}
}

func (e *FormatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %s: %v", ErrFormat, e.Reason, e.cause)
	}
	return fmt.Sprintf("%v: %s", ErrFormat, e.Reason)
}

// Unwrap returns ErrFormat and, if present, the underlying cause.
func (e *FormatError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrFormat, e.cause}
	}
	return []error{ErrFormat}
}

func (h *Header) validate() error {
	if h.Magic != MagicNumber {
		return newFormatError(nil, "bad magic 0x%08x", h.Magic)
	}
	if h.Version != Version {
		return newFormatError(nil, "unsupported version %d", h.Version)
	}
	if h.NumClusters == 0 {
		return newFormatError(nil, "zero clusters")
	}
	if h.BitLength == 0 || h.BitLength%8 != 0 {
		return newFormatError(nil, "bit length %d is not a positive multiple of 8", h.BitLength)
	}
	switch h.Compression {
	case CompressionNone:
		if h.PayloadSize != h.rawSize() {
			return newFormatError(nil, "payload size %d does not match %d clusters of %d bits", h.PayloadSize, h.NumClusters, h.BitLength)
		}
	case CompressionLZ4, CompressionZSTD:
	default:
		return newFormatError(nil, "unknown compression %d", h.Compression)
	}
	return nil
}

func (h *Header) rawSize() uint64 {
	return uint64(h.NumClusters) * uint64(h.BitLength/8)
}
