// Package panoptic constructs the panoptic variant of the top-down
// feature pyramid: a fixed reduce→merge→resample ordering, an optional
// "lite" depthwise refinement, and an optional temporal-fusion step that
// folds a sequence axis into each pyramid level.
//
// What:
//
//   - PyramidFeatures records the pyramid over a backbone mapping and
//     returns {"P3": P3, ...}; resampling is strictly a template resize
//     to the exact next-finer backbone shape (no learned transpose).
//   - MergeTemporalFeatures applies one of four interchangeable fusion
//     strategies to a single feature: TemporalNone (pass-through),
//     TemporalConv (frames×3×3 convolution, batch-norm, ReLU),
//     TemporalLSTM, or TemporalGRU. Levels are independent: the step is
//     order-insensitive across the pyramid.
//
// Options:
//
//   - Lite substitutes a channel-preserving depthwise convolution for
//     the full 3×3 refinement (2-D only).
//   - Interp chooses bilinear or nearest template resizing.
//   - TemporalMode + FramesPerBatch select and size the fusion step.
//
// Errors (all detected at entry, before any node is emitted):
//
//   - graph.ErrUnsupportedDimensionality: NDim outside {2, 3}.
//   - graph.ErrUnsupportedInterpolation:  unknown Interp.
//   - ErrUnsupportedTemporalMode:         unknown TemporalMode.
//   - ErrLiteRequires2D:                  Lite with NDim=3.
//   - ErrBadFrames:                       FramesPerBatch < 1.
//   - ErrEmptyBackbone:                   no input levels.
//   - levels.ErrMalformedLevelName / levels.ErrDuplicateRank: bad keys.
package panoptic
