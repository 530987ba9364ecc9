package panoptic

import (
	"fmt"

	"github.com/katalvlaran/pyramid/graph"
)

// methodMergeTemporal tags errors raised by MergeTemporalFeatures.
const methodMergeTemporal = "MergeTemporalFeatures"

// MergeTemporalFeatures folds the sequence axis of feature into its
// channel content using the strategy selected by opts.TemporalMode and
// returns the fused, same-shaped feature.
//
// Strategies:
//   - TemporalNone: feature is returned unchanged, no node is emitted.
//   - TemporalConv: a FramesPerBatch×3×3 convolution followed by batch
//     normalization and ReLU.
//   - TemporalLSTM / TemporalGRU: recurrent convolutional fusion with a
//     3×3 kernel, returning the full sequence.
//
// The step is independent per level: fusing one pyramid level never
// reads another, so callers may apply it in any order across levels.
func MergeTemporalFeatures(g *graph.Graph, feature *graph.Node, opts Options) (*graph.Node, error) {
	if err := opts.validate(methodMergeTemporal); err != nil {
		return nil, err
	}
	if feature == nil {
		return nil, fmt.Errorf("%s: %w", methodMergeTemporal, ErrEmptyBackbone)
	}

	level := feature.Level()
	base := feature.Name() + "_temporal"

	switch opts.TemporalMode {
	case TemporalNone:
		return feature, nil

	case TemporalConv:
		x := g.Apply(graph.OpConv, base, level, graph.RoleNone,
			graph.Attrs{
				Kernel: refineKernel, Stride: strideOne,
				ZKernel: opts.FramesPerBatch, ZStride: strideOne,
				NDim: graph.NDim3, Filters: opts.FeatureSize,
			}, feature)
		x = g.Apply(graph.OpBatchNorm, base+"_bn", level, graph.RoleNone,
			graph.Attrs{NDim: graph.NDim3}, x)
		x = g.Apply(graph.OpReLU, base+"_relu", level, graph.RoleNone,
			graph.Attrs{NDim: graph.NDim3}, x)
		return x, nil

	case TemporalLSTM:
		return g.Apply(graph.OpConvLSTM, base, level, graph.RoleNone,
			graph.Attrs{Kernel: refineKernel, NDim: graph.NDim3, Filters: opts.FeatureSize}, feature), nil

	case TemporalGRU:
		return g.Apply(graph.OpConvGRU, base, level, graph.RoleNone,
			graph.Attrs{Kernel: refineKernel, NDim: graph.NDim3, Filters: opts.FeatureSize}, feature), nil

	default:
		// Unreachable after validate; kept for exhaustive-switch clarity.
		return nil, fmt.Errorf("%s: mode=%d: %w", methodMergeTemporal, opts.TemporalMode, ErrUnsupportedTemporalMode)
	}
}
