package vocabulary

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how the centroid payload is stored.
type Compression uint8

const (
	// CompressionNone stores centroids verbatim.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression.
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd compression.
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// zstdMaxWindow matches the window SpeedDefault encodes with.
const zstdMaxWindow = 8 << 20

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxWindow(zstdMaxWindow),
	)
	return dec
}

// compress returns the stored payload for raw and the compression actually
// applied. Payloads that do not shrink below 90% are stored uncompressed.
func compress(raw []byte, c Compression) ([]byte, Compression, error) {
	var out []byte
	switch c {
	case CompressionNone:
		return raw, CompressionNone, nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, 0, err
		}
		out = buf[:n] // n == 0 means incompressible
	case CompressionZSTD:
		enc := getZstdEncoder()
		out = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, 0, fmt.Errorf("vocabulary: unknown compression %d", c)
	}

	if len(out) == 0 || float64(len(out)) > float64(len(raw))*0.9 {
		return raw, CompressionNone, nil
	}
	return out, c, nil
}

// lz4MaxRatio is the largest expansion an LZ4 block can encode.
const lz4MaxRatio = 255

// decompress expands payload into exactly rawSize bytes. rawSize comes from
// an untrusted header, so no buffer is sized from it before the payload
// proves it can produce that many bytes.
func decompress(payload []byte, c Compression, rawSize int) ([]byte, error) {
	switch c {
	case CompressionNone:
		return payload, nil
	case CompressionLZ4:
		if rawSize/lz4MaxRatio > len(payload) {
			return nil, newFormatError(nil, "%d payload bytes cannot expand to %d", len(payload), rawSize)
		}
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, newFormatError(err, "lz4 payload")
		}
		if n != rawSize {
			return nil, newFormatError(nil, "decompressed %d bytes, want %d", n, rawSize)
		}
		return out, nil
	case CompressionZSTD:
		return decompressZstd(payload, rawSize)
	default:
		return nil, newFormatError(nil, "unknown compression %d", c)
	}
}

// decompressZstd streams the frame through a limit so the output buffer only
// grows with decoded bytes.
func decompressZstd(payload []byte, rawSize int) ([]byte, error) {
	dec := getZstdDecoder()
	defer func() {
		_ = dec.Reset(nil)
		zstdDecoderPool.Put(dec)
	}()

	if err := dec.Reset(bytes.NewReader(payload)); err != nil {
		return nil, newFormatError(err, "zstd payload")
	}

	out, err := io.ReadAll(io.LimitReader(dec, int64(rawSize)))
	if err != nil {
		return nil, newFormatError(err, "zstd payload")
	}
	if len(out) != rawSize {
		return nil, newFormatError(nil, "decompressed %d bytes, want %d", len(out), rawSize)
	}

	var extra [1]byte
	if n, _ := dec.Read(extra[:]); n != 0 {
		return nil, newFormatError(nil, "decompressed more than %d bytes", rawSize)
	}
	return out, nil
}
