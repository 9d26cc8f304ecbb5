package bitvec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

var (
	// ErrEmpty is returned when accumulating an empty member set.
	ErrEmpty = errors.New("bitvec: no members to accumulate")
	// ErrLengthMismatch is returned when descriptors have different lengths.
	ErrLengthMismatch = errors.New("bitvec: descriptor length mismatch")
)

// Accumulator holds, for every bit position, the number of accumulated
// descriptors having that bit set.
type Accumulator []uint32

// NewAccumulator returns a zeroed accumulator for descriptors of rowBytes bytes.
func NewAccumulator(rowBytes int) Accumulator {
	return make(Accumulator, rowBytes*8)
}

// Bits returns the descriptor bit-length covered by the accumulator.
func (a Accumulator) Bits() int {
	return len(a)
}

// Add decomposes row into bits and adds them to the accumulator.
// The caller guarantees len(row)*8 == len(a).
func (a Accumulator) Add(row []byte) {
	for j, b := range row {
		if b == 0 {
			continue
		}
		base := j * 8
		for k := 0; k < 8; k++ {
			a[base+k] += uint32(b>>(7-k)) & 1
		}
	}
}

// Reset zeroes all counters.
func (a Accumulator) Reset() {
	clear(a)
}

// Accumulate returns the per-bit set counts of members.
func Accumulate(members [][]byte) (Accumulator, error) {
	if len(members) == 0 {
		return nil, ErrEmpty
	}
	rowBytes := len(members[0])
	acc := NewAccumulator(rowBytes)
	for i, m := range members {
		if len(m) != rowBytes {
			return nil, fmt.Errorf("%w: member %d has %d bytes, want %d", ErrLengthMismatch, i, len(m), rowBytes)
		}
		acc.Add(m)
	}
	return acc, nil
}

// MajorityVote thresholds acc component-wise. A bit is set iff its count
// strictly exceeds threshold/2; an exact half yields 0.
//
// threshold is normally the number of descriptors accumulated into acc.
func MajorityVote(acc Accumulator, threshold int) []byte {
	out := make([]byte, (len(acc)+7)/8)
	MajorityVoteInto(out, acc, threshold)
	return out
}

// MajorityVoteInto is like MajorityVote but writes into dst, which must hold
// at least len(acc)/8 bytes. dst is fully overwritten.
func MajorityVoteInto(dst []byte, acc Accumulator, threshold int) {
	clear(dst)
	t := uint64(max(threshold, 0))
	for p, c := range acc {
		if 2*uint64(c) > t {
			dst[p/8] |= 0x80 >> (p % 8)
		}
	}
}

// Hamming returns the number of differing bits between a and b.
// Only the common prefix is compared when lengths differ.
func Hamming(a, b []byte) uint32 {
	n := min(len(a), len(b))

	var dist int
	i := 0
	for ; i+8 <= n; i += 8 {
		dist += bits.OnesCount64(binary.LittleEndian.Uint64(a[i:]) ^ binary.LittleEndian.Uint64(b[i:]))
	}
	for ; i < n; i++ {
		dist += bits.OnesCount8(a[i] ^ b[i])
	}
	return uint32(dist)
}

// Bit reports whether bit position p of row is set.
func Bit(row []byte, p int) bool {
	return row[p/8]&(0x80>>(p%8)) != 0
}
