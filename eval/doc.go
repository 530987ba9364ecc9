// Package eval executes a recorded pyramid graph over concrete 2-D
// feature maps. It is a reference interpreter for verifying shapes and
// topology, not an execution engine: operator numerics are deliberately
// simple and deterministic (box-filter convolutions, per-channel
// standardizing batch norm), while shape arithmetic follows the usual
// same-padding and stride conventions exactly.
//
// Run walks the graph in emission order, which is topological order by
// construction, computing each node once. The result maps every node
// name to its value; callers index it by pyramid names ("P3", ...).
//
// Operator shapes (H×W×C in, s = stride, k = kernel):
//
//   - conv, depthwise_conv:  ⌈H/s⌉ × ⌈W/s⌉, same padding; conv widens
//     channels to Attrs.Filters (0 preserves), depthwise keeps them.
//   - conv_transpose:        H·s × W·s.
//   - upsample:              H·scale × W·scale, bilinear or nearest.
//   - resize:                spatial shape of input[1], bilinear or nearest.
//   - max_pool:              ⌊H/s⌋ × ⌊W/s⌋, valid padding.
//   - reflect_pad:           spatial shape of input[1]; ErrShapeMismatch
//     when input[0] already exceeds the target on either axis.
//   - add:                   all inputs identical shapes, else ErrShapeMismatch.
//   - concat:                channels summed; spatial shapes must agree.
//
// 3-D and temporal operators (any node emitted with NDim 3, conv_lstm,
// conv_gru) fail with ErrUnsupportedOp. A declared input without a feed
// fails with ErrMissingFeed.
package eval
