// Package pyramid builds multi-resolution feature-fusion graphs for
// image-segmentation networks: given named backbone feature maps at
// different spatial resolutions, it constructs the operator DAG that
// fuses them into a feature pyramid.
//
// 🚀 What is pyramid?
//
//	A deterministic topology-construction library that brings together:
//		• levels/   — level-name registry: rank parsing & stable ordering
//		• graph/    — the op-DAG substrate: nodes, roles, one Apply recorder
//		• fpn/      — plain top-down feature pyramid (chained or not,
//		              learned or template upsampling, synthetic levels)
//		• panoptic/ — panoptic pyramid with lite depthwise refinement
//		              and temporal fusion (conv / lstm / gru)
//		• bifpn/    — weighted bidirectional pyramid, phi repeated
//		              top-down + bottom-up passes
//		• tensor/   — dense 2-D feature maps over gonum matrices
//		• eval/     — reference executor for recorded graphs
//
// ✨ Why choose pyramid?
//
//   - Topology only — convolution, resize and pooling are recorded as
//     graph nodes; execution is the caller's concern (eval/ is a
//     reference interpreter, not an engine)
//   - Deterministic — identical inputs always produce identical graphs,
//     with stable node IDs and rank-sorted level order
//   - Strict validation — every enumerated option is checked at builder
//     entry, before a single node is emitted; sentinel errors throughout
//
// Quick ASCII example (three backbone levels, synthesis on):
//
//	C5 ──reduce──merge──────────────► P5      P6 = stride-2 conv(C5)
//	      │ upsample                          P7 = stride-2 conv(relu(P6))
//	C4 ──reduce──merge──────────────► P4
//	      │ upsample
//	C3 ──reduce──merge──────────────► P3
//
// Dive into each package's doc.go for contracts, error taxonomies and
// worked examples.
//
//	go get github.com/katalvlaran/pyramid
package pyramid
