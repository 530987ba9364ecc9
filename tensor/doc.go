// Package tensor provides Dense, a minimal H×W×C feature map backed by
// one gonum mat.Dense per channel. It is the value type the reference
// executor computes with and the shape carrier for feeds and outputs.
//
// Dense is deliberately small: constructors, element access, per-channel
// matrix access, and shape comparison. Anything heavier (convolution,
// resampling) lives with its operator in the executor.
package tensor
