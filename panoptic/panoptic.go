package panoptic

import (
	"fmt"
	"strconv"

	"github.com/katalvlaran/pyramid/graph"
	"github.com/katalvlaran/pyramid/levels"
)

// File-local constants: method tags and kernel geometry (no magic literals).
const (
	methodPyramidFeatures = "PyramidFeatures"

	reduceKernel = 1 // 1x1 channel projection
	refineKernel = 3 // 3x3 refinement convolution
	strideOne    = 1
	strideTwo    = 2
	zFlat        = 1 // 3-D ops never touch the depth axis here
)

// PyramidFeatures records the panoptic pyramid over backbone and
// returns the output mapping keyed by pyramid names ("P3", "P4", ...).
//
// Per level, coarsest-first: 1x1 reduce, merge with the coarser level's
// resampled feature, template-resize the merged feature to the exact
// next-finer backbone shape, then refine (3x3 conv, or depthwise when
// Lite). IncludeFinalLayers appends ranks max+1 and max+2 as in fpn,
// with depth-preserving kernels in 3-D. When TemporalMode is not
// TemporalNone, every output level is passed through the temporal
// fusion step afterwards (levels stay independent of each other).
//
// Complexity: O(n) nodes for n backbone levels.
func PyramidFeatures(g *graph.Graph, backbone map[string]*graph.Node, opts Options) (map[string]*graph.Node, error) {
	if err := opts.validate(methodPyramidFeatures); err != nil {
		return nil, err
	}
	if len(backbone) == 0 {
		return nil, fmt.Errorf("%s: %w", methodPyramidFeatures, ErrEmptyBackbone)
	}
	pairs, err := levels.SortedPairs(backbone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodPyramidFeatures, err)
	}

	out := make(map[string]*graph.Node, len(pairs)+2)

	// idx = n-1 is the coarsest level, idx = 0 the finest.
	var carry *graph.Node // resampled feature retained from the coarser iteration
	n := len(pairs)
	for idx := n - 1; idx >= 0; idx-- {
		rank := pairs[idx].Rank
		var target *graph.Node
		if idx > 0 {
			target = backbone[pairs[idx-1].Name]
		}

		final, upsampled := pyramidLevel(g, backbone[pairs[idx].Name], target, carry, rank, opts)
		out[pyramidName(rank)] = final
		carry = upsampled
	}

	if opts.IncludeFinalLayers {
		appendFinalLayers(g, backbone[pairs[n-1].Name], pairs[n-1], out, opts)
	}

	if opts.TemporalMode != TemporalNone {
		// Levels are independent; iterate rank-sorted so emission stays
		// deterministic.
		outPairs, err := levels.SortedPairs(out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", methodPyramidFeatures, err)
		}
		for _, p := range outPairs {
			fused, err := MergeTemporalFeatures(g, out[p.Name], opts)
			if err != nil {
				return nil, err
			}
			out[p.Name] = fused
		}
	}

	return out, nil
}

// pyramidLevel records one panoptic level: reduce, merge, resample (in
// that fixed order), refine. Returns the refined output and the
// resampled feature for the next finer level (nil without a target).
func pyramidLevel(g *graph.Graph, backboneIn, target, addition *graph.Node, level int, opts Options) (final, upsampled *graph.Node) {
	lvl := strconv.Itoa(level)

	// 1x1 projection to the target channel width.
	pyramid := g.Apply(graph.OpConv, "C"+lvl+"_reduced", level, graph.RoleReduced,
		graph.Attrs{
			Kernel: reduceKernel, Stride: strideOne,
			ZKernel: zKernel(reduceKernel, opts), ZStride: zStride(strideOne, opts),
			NDim: opts.NDim, Filters: opts.FeatureSize,
		}, backboneIn)

	// Merge precedes the resample: the carry-down always contains this
	// level's fused content.
	if addition != nil {
		pyramid = g.Apply(graph.OpAdd, "P"+lvl+"_merged", level, graph.RoleMerged,
			graph.Attrs{NDim: opts.NDim}, pyramid, addition)
	}

	// Template resize to the exact next-finer backbone shape.
	if target != nil {
		upsampled = g.Apply(graph.OpResize, "P"+lvl+"_upsampled", level, graph.RoleUpsampled,
			graph.Attrs{NDim: opts.NDim, Interp: opts.Interp}, pyramid, target)
	}

	// Refinement: depthwise (channel-preserving) when Lite, full conv
	// otherwise; 3-D keeps the depth axis flat with a (1,3,3) kernel.
	if opts.Lite {
		final = g.Apply(graph.OpDepthwiseConv, "P"+lvl, level, graph.RoleFinal,
			graph.Attrs{Kernel: refineKernel, Stride: strideOne, NDim: opts.NDim}, pyramid)
	} else {
		final = g.Apply(graph.OpConv, "P"+lvl, level, graph.RoleFinal,
			graph.Attrs{
				Kernel: refineKernel, Stride: strideOne,
				ZKernel: zKernel(zFlat, opts), ZStride: zStride(strideOne, opts),
				NDim: opts.NDim, Filters: opts.FeatureSize,
			}, pyramid)
	}

	return final, upsampled
}

// appendFinalLayers synthesizes ranks max+1 and max+2 from the coarsest
// backbone feature. 3-D strides keep the depth axis flat ((1,2,2)).
func appendFinalLayers(g *graph.Graph, coarsest *graph.Node, p levels.Pair, out map[string]*graph.Node, opts Options) {
	synth := graph.Attrs{
		Kernel: refineKernel, Stride: strideTwo,
		ZKernel: zKernel(zFlat, opts), ZStride: zStride(strideOne, opts),
		NDim: opts.NDim, Filters: opts.FeatureSize,
	}

	plusOne := p.Rank + 1
	first := g.Apply(graph.OpConv, pyramidName(plusOne), plusOne, graph.RoleFinal, synth, coarsest)
	out[pyramidName(plusOne)] = first

	plusTwo := p.Rank + 2
	act := g.Apply(graph.OpReLU, p.Name+"_relu", plusTwo, graph.RoleNone, graph.Attrs{}, first)
	out[pyramidName(plusTwo)] = g.Apply(graph.OpConv, pyramidName(plusTwo), plusTwo, graph.RoleFinal, synth, act)
}

// zKernel returns k for 3-D networks and 0 (not applicable) for 2-D.
func zKernel(k int, opts Options) int {
	if opts.NDim == graph.NDim3 {
		return k
	}
	return 0
}

// zStride returns s for 3-D networks and 0 (not applicable) for 2-D.
func zStride(s int, opts Options) int {
	if opts.NDim == graph.NDim3 {
		return s
	}
	return 0
}

// pyramidName renders the output key for a rank: pyramidName(5) = "P5".
func pyramidName(rank int) string {
	return "P" + strconv.Itoa(rank)
}
