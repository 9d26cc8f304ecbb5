package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/kmajority/bitvec"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillBytes fills dst with random bytes.
func (r *RNG) FillBytes(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Read(dst)
}

// UniformDescriptors generates num random descriptors of rowBytes bytes each.
// Uses a single backing array for efficiency.
func (r *RNG) UniformDescriptors(num, rowBytes int) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]byte, num*rowBytes)
	r.rand.Read(data)

	rows := make([][]byte, num)
	for i := range num {
		rows[i] = data[i*rowBytes : (i+1)*rowBytes : (i+1)*rowBytes]
	}
	return rows
}

// ClusteredDescriptors generates descriptors scattered around random prototypes.
// Row i derives from prototype i%clusters with every bit flipped independently
// with probability noise.
func (r *RNG) ClusteredDescriptors(num, rowBytes, clusters int, noise float64) [][]byte {
	protos := r.UniformDescriptors(clusters, rowBytes)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]byte, num*rowBytes)
	rows := make([][]byte, num)
	for i := range num {
		row := data[i*rowBytes : (i+1)*rowBytes : (i+1)*rowBytes]
		copy(row, protos[i%clusters])
		for p := range rowBytes * 8 {
			if r.rand.Float64() < noise {
				row[p/8] ^= 0x80 >> (p % 8)
			}
		}
		rows[i] = row
	}
	return rows
}

// ExactNearest returns the index of the reference closest to query and its
// Hamming distance, breaking ties toward the lowest index.
func ExactNearest(query []byte, refs [][]byte) (int, uint32) {
	best, bestDist := -1, uint32(math.MaxUint32)
	for i, ref := range refs {
		if d := bitvec.Hamming(query, ref); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}
