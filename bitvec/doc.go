// Package bitvec provides the bit-level arithmetic behind majority-vote clustering
// of binary descriptors.
//
// A descriptor is a packed bit vector stored as a byte slice. Bit position p lives
// in byte p/8 under mask 0x80>>(p%8), i.e. the most significant bit of the first
// byte is position 0.
//
// # Majority voting
//
// A centroid for a set of descriptors is built in two steps:
//
//	acc := bitvec.NewAccumulator(rowBytes)
//	for _, row := range members {
//	    acc.Add(row)
//	}
//	centroid := bitvec.MajorityVote(acc, len(members))
//
// A bit is set in the result iff more than half of the members have it set. An
// exact half leaves the bit cleared.
package bitvec
