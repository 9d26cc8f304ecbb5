package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytes(t *testing.T) {
	m, err := FromBytes([]byte{1, 2, 3, 4, 5, 6}, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 2, m.RowBytes())
	assert.Equal(t, []byte{3, 4}, m.Row(1))
	assert.Equal(t, 2, cap(m.Row(0)))
}

func TestFromBytes_InvalidShape(t *testing.T) {
	_, err := FromBytes([]byte{1, 2, 3}, 2)
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = FromBytes([]byte{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestNewDense(t *testing.T) {
	src := [][]byte{{0xAA}, {0xBB}, {0xCC}}
	m, err := NewDense(src)
	require.NoError(t, err)

	src[0][0] = 0x00
	assert.Equal(t, []byte{0xAA}, m.Row(0), "NewDense copies its input")
	assert.Equal(t, 3, m.Rows())

	_, err = NewDense([][]byte{{1}, {1, 2}})
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = NewDense(nil)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desc.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, 0o600))

	f, err := OpenFile(path, 4)
	require.NoError(t, err)
	defer f.Close()

	var m Matrix = f
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 4, m.RowBytes())
	assert.Equal(t, []byte{0x05, 0x06, 0x07, 0x08}, m.Row(1))
}

func TestOpenFile_InvalidShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desc.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x02, 0x03}, 0o600))

	_, err := OpenFile(path, 2)
	assert.ErrorIs(t, err, ErrInvalidShape)
}
