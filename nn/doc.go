// Package nn resolves the nearest reference descriptor for a query under Hamming
// distance.
//
// Two index variants are available, selected at construction time:
//
//   - Linear: exhaustive scan over all references.
//   - Hierarchical: a metric tree built by farthest-first pivot selection. Search
//     prunes subtrees with the triangle inequality and returns exactly the same
//     neighbor as Linear.
//
// Both variants break distance ties toward the lowest reference index, so
// repeated queries against an unchanged reference set are deterministic.
//
// Indexes are immutable after construction and safe for concurrent Nearest calls.
package nn
