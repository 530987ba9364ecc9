// Package bifpn constructs a weighted bidirectional feature pyramid:
// phi repetitions of a two-phase fusion pass (top-down, then bottom-up)
// where each repetition's output levels feed the next repetition.
//
// One pass over levels sorted by rank (finest … coarsest):
//
//   - Input projection: every level goes through a conv+BN+ReLU block to
//     the uniform channel width. On the first pass only, synthesis (when
//     requested) derives two extra coarsest levels via two successive
//     stride-2 conv blocks on the coarsest available input; they emerge
//     at the uniform width, so they are not re-projected.
//   - Top-down: from the second-coarsest level down to the finest, the
//     previous step's output (the coarsest projected input on the first
//     step) is upsampled by a fixed 2× resize, added to the level's
//     projected input, and refined by a depthwise block. Every level but
//     the coarsest gains a top-down intermediate.
//   - Bottom-up: the finest output level is its top-down intermediate
//     directly. Each coarser level sums the 2× max-pooled previous
//     output, its own top-down intermediate (the coarsest has none), and
//     its own projected input, then refines with a depthwise block. The
//     finest level therefore has one contributing term, interior levels
//     three, and the coarsest two.
//
// Invariants: output level names equal input level names (plus any
// first-pass synthesized ranks); channel width is uniform from the
// projection onward.
//
// Errors (all detected at entry, before any node is emitted):
//
//   - ErrBadPhi:       repeat count below 1.
//   - ErrEmptyFeatures: no input levels.
//   - ErrTooFewLevels: fewer than two effective levels (a lone level has
//     nothing to fuse; synthesis counts toward the minimum).
//   - graph.ErrUnsupportedDimensionality: NDim other than 2.
//   - graph.ErrUnsupportedInterpolation:  unknown Interp.
//   - levels.ErrMalformedLevelName / levels.ErrDuplicateRank: bad keys.
package bifpn
