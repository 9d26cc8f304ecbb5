package testutil

import (
	"testing"

	"github.com/hupe1980/kmajority/bitvec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformDescriptors(t *testing.T) {
	rng := NewRNG(4711)

	rows := rng.UniformDescriptors(8, 32)

	require.Len(t, rows, 8)
	for _, row := range rows {
		assert.Len(t, row, 32)
	}
	assert.NotEqual(t, rows[0], rows[1])
}

func TestUniformDescriptors_Reproducible(t *testing.T) {
	a := NewRNG(42).UniformDescriptors(4, 16)
	b := NewRNG(42).UniformDescriptors(4, 16)
	assert.Equal(t, a, b)
}

func TestReset(t *testing.T) {
	rng := NewRNG(7)
	first := rng.UniformDescriptors(2, 8)
	rng.Reset()
	assert.Equal(t, first, rng.UniformDescriptors(2, 8))
	assert.Equal(t, int64(7), rng.Seed())
}

func TestClusteredDescriptors(t *testing.T) {
	rng := NewRNG(4711)

	rows := rng.ClusteredDescriptors(40, 32, 4, 0.02)
	require.Len(t, rows, 40)

	// Rows sharing a prototype are much closer than the 128 bits expected at random.
	for i := 4; i < len(rows); i++ {
		assert.Less(t, bitvec.Hamming(rows[i], rows[i%4]), uint32(64))
	}
}

func TestExactNearest(t *testing.T) {
	refs := [][]byte{{0xFF}, {0x0F}, {0x0F}, {0x00}}

	idx, dist := ExactNearest([]byte{0x0E}, refs)
	assert.Equal(t, 1, idx)
	assert.Equal(t, uint32(1), dist)

	idx, dist = ExactNearest([]byte{0x00}, refs)
	assert.Equal(t, 3, idx)
	assert.Equal(t, uint32(0), dist)
}
