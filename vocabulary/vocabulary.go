package vocabulary

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/kmajority/blobstore"
	"github.com/hupe1980/kmajority/internal/conv"
	"github.com/hupe1980/kmajority/internal/hash"
)

var (
	// ErrEmpty is returned when creating a vocabulary without centroids.
	ErrEmpty = errors.New("vocabulary: no centroids")
	// ErrRagged is returned when centroids have different or zero lengths.
	ErrRagged = errors.New("vocabulary: centroids must share a non-zero length")
)

// Vocabulary is an immutable set of centroids of equal bit length.
type Vocabulary struct {
	rowBytes  int
	data      []byte // centroids back to back, cluster order
	centroids [][]byte
}

// New creates a vocabulary from a deep copy of centroids.
func New(centroids [][]byte) (*Vocabulary, error) {
	if len(centroids) == 0 {
		return nil, ErrEmpty
	}
	rowBytes := len(centroids[0])
	if rowBytes == 0 {
		return nil, ErrRagged
	}
	if _, err := conv.IntToUint32(len(centroids)); err != nil {
		return nil, fmt.Errorf("vocabulary: cluster count: %w", err)
	}
	if _, err := conv.IntToUint32(rowBytes * 8); err != nil {
		return nil, fmt.Errorf("vocabulary: bit length: %w", err)
	}

	data := make([]byte, 0, len(centroids)*rowBytes)
	for i, c := range centroids {
		if len(c) != rowBytes {
			return nil, fmt.Errorf("%w: centroid %d has %d bytes, want %d", ErrRagged, i, len(c), rowBytes)
		}
		data = append(data, c...)
	}
	return fromRaw(data, len(centroids), rowBytes), nil
}

func fromRaw(data []byte, numClusters, rowBytes int) *Vocabulary {
	rows := make([][]byte, numClusters)
	for i := range rows {
		off := i * rowBytes
		rows[i] = data[off : off+rowBytes : off+rowBytes]
	}
	return &Vocabulary{rowBytes: rowBytes, data: data, centroids: rows}
}

// NumClusters returns the number of centroids.
func (v *Vocabulary) NumClusters() int {
	return len(v.centroids)
}

// BitLength returns the descriptor length in bits.
func (v *Vocabulary) BitLength() int {
	return v.rowBytes * 8
}

// RowBytes returns the descriptor length in bytes.
func (v *Vocabulary) RowBytes() int {
	return v.rowBytes
}

// Centroid returns centroid i. The slice must not be modified.
func (v *Vocabulary) Centroid(i int) []byte {
	return v.centroids[i]
}

// Centroids returns the centroids in cluster order. The slices must not be
// modified.
func (v *Vocabulary) Centroids() [][]byte {
	return v.centroids
}

// Options configures encoding.
type Options struct {
	Compression Compression
}

// WithCompression selects the payload compression.
func WithCompression(c Compression) func(*Options) {
	return func(o *Options) {
		o.Compression = c
	}
}

func (v *Vocabulary) raw() []byte {
	return v.data
}

// Encode writes v to w.
func Encode(w io.Writer, v *Vocabulary, optFns ...func(*Options)) error {
	opts := Options{Compression: CompressionNone}
	for _, fn := range optFns {
		fn(&opts)
	}

	raw := v.raw()
	payload, applied, err := compress(raw, opts.Compression)
	if err != nil {
		return err
	}

	numClusters, err := conv.IntToUint32(v.NumClusters())
	if err != nil {
		return err
	}
	bitLength, err := conv.IntToUint32(v.BitLength())
	if err != nil {
		return err
	}
	payloadSize, err := conv.IntToUint64(len(payload))
	if err != nil {
		return err
	}

	header := Header{
		Magic:       MagicNumber,
		Version:     Version,
		NumClusters: numClusters,
		BitLength:   bitLength,
		Compression: applied,
		PayloadSize: payloadSize,
		Checksum:    hash.CRC32C(raw),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// Decode reads a vocabulary from r. It consumes exactly one header and the
// payload the header declares.
func Decode(r io.Reader) (*Vocabulary, error) {
	var header Header
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, newFormatError(err, "truncated header")
		}
		return nil, err
	}
	if err := header.validate(); err != nil {
		return nil, err
	}

	rawSize, err := conv.Uint64ToInt(header.rawSize())
	if err != nil {
		return nil, newFormatError(err, "centroid matrix too large")
	}
	if _, err := conv.Uint64ToInt(header.PayloadSize); err != nil {
		return nil, newFormatError(err, "payload too large")
	}
	numClusters, err := conv.Uint32ToInt(header.NumClusters)
	if err != nil {
		return nil, newFormatError(err, "cluster count too large")
	}

	// Buffers grow with the bytes actually present, never with declared sizes.
	payload, err := io.ReadAll(io.LimitReader(r, int64(header.PayloadSize)))
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) != header.PayloadSize {
		return nil, newFormatError(nil, "payload has %d bytes, header declares %d", len(payload), header.PayloadSize)
	}

	raw, err := decompress(payload, header.Compression, rawSize)
	if err != nil {
		return nil, err
	}
	if sum := hash.CRC32C(raw); sum != header.Checksum {
		return nil, newFormatError(nil, "checksum mismatch: got 0x%08x, want 0x%08x", sum, header.Checksum)
	}

	return fromRaw(raw, numClusters, int(header.BitLength/8)), nil
}

// Marshal encodes v into a new byte slice.
func Marshal(v *Vocabulary, optFns ...func(*Options)) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerSize + len(v.raw()))
	if err := Encode(&buf, v, optFns...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a vocabulary from data. Trailing bytes are a format error.
func Unmarshal(data []byte) (*Vocabulary, error) {
	r := bytes.NewReader(data)
	v, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, newFormatError(nil, "%d trailing bytes after payload", r.Len())
	}
	return v, nil
}

// Save encodes v and stores it under name.
func Save(ctx context.Context, store blobstore.Store, name string, v *Vocabulary, optFns ...func(*Options)) error {
	data, err := Marshal(v, optFns...)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// Load reads and decodes the vocabulary stored under name.
func Load(ctx context.Context, store blobstore.Store, name string) (*Vocabulary, error) {
	data, err := blobstore.Get(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
