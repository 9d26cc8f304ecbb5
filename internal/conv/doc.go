// Package conv provides bounds-checked integer conversions for values that
// cross the vocabulary file format: cluster counts, bit lengths and payload
// sizes.
//
// Conversions that are provably safe by construction (loop indices, bounded
// counters) use direct casts instead.
package conv
