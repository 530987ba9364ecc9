// Package levels is the level-name registry shared by every pyramid
// builder: it parses resolution ranks out of level names and produces
// the deterministic orderings the builders iterate over.
//
// What:
//
//   - Rank extracts the embedded integer rank from a level name such as
//     "C3" or "P5" (first run of decimal digits; higher rank = coarser).
//   - SortedPairs / SortedNames order a level mapping by ascending rank,
//     ties broken by name, stable across repeated calls.
//
// Why:
//
//   - Backbone collaborators hand over plain map[string]T mappings; map
//     iteration order is random, while pyramid wiring must be
//     deterministic. Sorting once into (rank, name) pairs lets builders
//     iterate by index in either direction.
//
// Errors:
//
//   - ErrMalformedLevelName: a name carries no digits, so no rank can be
//     extracted. Surfaces before any graph node is emitted.
//   - ErrDuplicateRank: two names in one mapping share a rank, which
//     would make upsample/merge adjacency ambiguous.
//
// Complexity: Rank is O(len(name)); SortedPairs is O(n log n) for n
// levels, O(n) extra space.
package levels
