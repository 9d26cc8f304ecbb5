package vocabulary

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/hupe1980/kmajority/blobstore"
	"github.com/hupe1980/kmajority/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVocabulary(t *testing.T) *Vocabulary {
	t.Helper()
	rng := testutil.NewRNG(4711)
	v, err := New(rng.UniformDescriptors(4, 32)) // 4 clusters, 256 bits
	require.NoError(t, err)
	return v
}

// repetitiveVocabulary compresses well.
func repetitiveVocabulary(t *testing.T) *Vocabulary {
	t.Helper()
	rows := make([][]byte, 64)
	for i := range rows {
		rows[i] = bytes.Repeat([]byte{byte(i % 4)}, 32)
	}
	v, err := New(rows)
	require.NoError(t, err)
	return v
}

func TestNew(t *testing.T) {
	src := [][]byte{{0x01, 0x02}, {0x03, 0x04}}
	v, err := New(src)
	require.NoError(t, err)

	src[0][0] = 0xFF
	assert.Equal(t, []byte{0x01, 0x02}, v.Centroid(0), "New copies centroids")
	assert.Equal(t, 2, v.NumClusters())
	assert.Equal(t, 16, v.BitLength())
	assert.Equal(t, 2, v.RowBytes())
	assert.Len(t, v.Centroids(), 2)

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = New([][]byte{{0x01}, {0x01, 0x02}})
	assert.ErrorIs(t, err, ErrRagged)
	_, err = New([][]byte{{}})
	assert.ErrorIs(t, err, ErrRagged)
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			v := newTestVocabulary(t)

			data, err := Marshal(v, WithCompression(c))
			require.NoError(t, err)

			got, err := Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, 4, got.NumClusters())
			assert.Equal(t, 256, got.BitLength())
			assert.Equal(t, v.Centroids(), got.Centroids())
		})
	}
}

func TestMarshal_Stable(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		for name, v := range map[string]*Vocabulary{
			"random":     newTestVocabulary(t),
			"repetitive": repetitiveVocabulary(t),
		} {
			t.Run(c.String()+"/"+name, func(t *testing.T) {
				first, err := Marshal(v, WithCompression(c))
				require.NoError(t, err)

				decoded, err := Decode(bytes.NewReader(first))
				require.NoError(t, err)
				require.Greater(t, decoded.NumClusters(), 1)

				second, err := Marshal(decoded, WithCompression(c))
				require.NoError(t, err)
				assert.Equal(t, first, second)

				unmarshaled, err := Unmarshal(second)
				require.NoError(t, err)
				third, err := Marshal(unmarshaled, WithCompression(c))
				require.NoError(t, err)
				assert.Equal(t, first, third)
			})
		}
	}
}

// encodeHeader builds a file with an arbitrary header in front of payload.
func encodeHeader(t *testing.T, numClusters, bitLength uint32, c Compression, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &Header{
		Magic:       MagicNumber,
		Version:     Version,
		NumClusters: numClusters,
		BitLength:   bitLength,
		Compression: c,
		PayloadSize: uint64(len(payload)),
	}))
	buf.Write(payload)
	return buf.Bytes()
}

func TestCompression_Applied(t *testing.T) {
	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			v := repetitiveVocabulary(t)

			data, err := Marshal(v, WithCompression(c))
			require.NoError(t, err)
			assert.Less(t, len(data), headerSize+64*32)
			assert.Equal(t, c, Compression(data[16]))

			got, err := Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, v.Centroids(), got.Centroids())
		})
	}
}

func TestCompression_FallbackForRandomData(t *testing.T) {
	data, err := Marshal(newTestVocabulary(t), WithCompression(CompressionZSTD))
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, Compression(data[16]))
	assert.Len(t, data, headerSize+4*32)
}

func TestCompression_String(t *testing.T) {
	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "lz4", CompressionLZ4.String())
	assert.Equal(t, "zstd", CompressionZSTD.String())
	assert.Equal(t, "Unknown(9)", Compression(9).String())
}

func TestUnmarshal_FormatErrors(t *testing.T) {
	valid, err := Marshal(newTestVocabulary(t))
	require.NoError(t, err)

	compressed, err := Marshal(repetitiveVocabulary(t), WithCompression(CompressionZSTD))
	require.NoError(t, err)

	compressedLZ4, err := Marshal(repetitiveVocabulary(t), WithCompression(CompressionLZ4))
	require.NoError(t, err)
	require.Equal(t, CompressionLZ4, Compression(compressedLZ4[16]))
	require.Equal(t, CompressionZSTD, Compression(compressed[16]))

	mutate := func(src []byte, fn func([]byte)) []byte {
		b := bytes.Clone(src)
		fn(b)
		return b
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"TruncatedHeader", valid[:headerSize-1]},
		{"TruncatedPayload", valid[:len(valid)-1]},
		{"TrailingBytes", append(bytes.Clone(valid), 0x00)},
		{"BadMagic", mutate(valid, func(b []byte) { b[0] ^= 0xFF })},
		{"BadVersion", mutate(valid, func(b []byte) { binary.LittleEndian.PutUint32(b[4:], 99) })},
		{"ZeroClusters", mutate(valid, func(b []byte) { binary.LittleEndian.PutUint32(b[8:], 0) })},
		{"BitLengthNotByteAligned", mutate(valid, func(b []byte) { binary.LittleEndian.PutUint32(b[12:], 255) })},
		{"ClusterCountMismatch", mutate(valid, func(b []byte) { binary.LittleEndian.PutUint32(b[8:], 5) })},
		{"UnknownCompression", mutate(valid, func(b []byte) { b[16] = 7 })},
		{"ChecksumMismatch", mutate(valid, func(b []byte) { b[headerSize] ^= 0x01 })},
		{"LZ4HugeDeclaredSize", encodeHeader(t, 0xFFFFFFFF, 0xFFFFFFF8, CompressionLZ4, []byte{1, 2, 3, 4})},
		{"ZSTDHugeDeclaredSize", encodeHeader(t, 0xFFFFFFFF, 0xFFFFFFF8, CompressionZSTD, []byte{1, 2, 3, 4})},
		{"LZ4InflatedClusterCount", mutate(compressedLZ4, func(b []byte) { binary.LittleEndian.PutUint32(b[8:], 1<<24) })},
		{"ZSTDInflatedClusterCount", mutate(compressed, func(b []byte) { binary.LittleEndian.PutUint32(b[8:], 1<<24) })},
		{"ZSTDShrunkClusterCount", mutate(compressed, func(b []byte) { binary.LittleEndian.PutUint32(b[8:], 63) })},
		{"CorruptCompressedPayload", mutate(compressed, func(b []byte) {
			for i := headerSize; i < len(b); i++ {
				b[i] ^= 0x5A
			}
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)

			var fe *FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	v := newTestVocabulary(t)

	stores := map[string]blobstore.Store{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Save(ctx, store, "orb/vocab.kmj", v, WithCompression(CompressionLZ4)))

			got, err := Load(ctx, store, "orb/vocab.kmj")
			require.NoError(t, err)
			assert.Equal(t, v.Centroids(), got.Centroids())

			_, err = Load(ctx, store, "missing.kmj")
			assert.ErrorIs(t, err, blobstore.ErrNotFound)
		})
	}
}
