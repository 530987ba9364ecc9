// Package fpn constructs a plain top-down feature pyramid: one fusion
// pass from the coarsest backbone level to the finest, with optional
// full chaining, learned upsampling, and two synthetic coarser levels.
//
// What:
//
//   - PyramidFeatures records the whole pyramid over a backbone mapping
//     {"C3": C3, "C4": C4, ...} and returns {"P3": P3, "P4": P4, ...}
//     (plus "P6"/"P7"-style synthetic levels when requested).
//   - PyramidLevel records a single level (1x1 reduction, optional merge
//     with the coarser level's upsampled feature, optional resample
//     toward the next finer level, 3x3 refinement) for callers
//     assembling custom pyramids.
//
// Ordering (the chaining toggle):
//
//   - FullyChained: merge first, then resample the merged feature, so
//     every coarser level's content is carried down through the whole
//     chain (as in the classic FPN formulation).
//   - Non-chained: resample the unmerged reduction first, then merge, so
//     each level's resample sees only the previous level's merge.
//
// Upsampling:
//
//   - Template (default): a resize of the source to the next finer
//     backbone feature's exact shape.
//   - Learned: a stride-2 transposed convolution assuming shapes halve
//     level to level, followed by a shape fix: reflection padding when
//     the input shape is variable, a template resize otherwise. The
//     second-to-finest level uses temporal stride 1 in 3-D, modeling a
//     depth axis that does not double every level.
//
// Errors (all detected at entry, before any node is emitted):
//
//   - graph.ErrUnsupportedDimensionality: NDim outside {2, 3}.
//   - graph.ErrUnsupportedInterpolation:  unknown Interp.
//   - ErrUnsupportedMergeMode:            unknown MergeMode.
//   - ErrEmptyBackbone:                   no input levels.
//   - levels.ErrMalformedLevelName / levels.ErrDuplicateRank: bad keys.
//
// Determinism: levels are visited in descending rank order derived from
// levels.SortedPairs; identical inputs produce identical graphs.
package fpn
