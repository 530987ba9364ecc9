package fpn

import (
	"fmt"
	"strconv"

	"github.com/katalvlaran/pyramid/graph"
	"github.com/katalvlaran/pyramid/levels"
)

// File-local constants: method tags and kernel geometry (no magic literals).
const (
	methodPyramidLevel    = "PyramidLevel"
	methodPyramidFeatures = "PyramidFeatures"

	reduceKernel = 1 // 1x1 channel projection
	refineKernel = 3 // 3x3 refinement convolution
	upKernel     = 2 // transposed-convolution kernel and stride
	strideOne    = 1
	strideTwo    = 2
)

// PyramidLevel records one pyramid level from its backbone feature and
// returns (final, upsampled): the level's 3x3-refined output and the
// resampled feature retained for the next finer level (nil when in has
// no UpsampleTarget).
//
// The per-level algorithm follows the §ordering contract in doc.go:
// reduce, then merge/resample in the order selected by
// opts.FullyChained, then refine.
//
// Complexity: O(1) nodes per call.
func PyramidLevel(g *graph.Graph, in LevelInput, opts Options) (final, upsampled *graph.Node, err error) {
	if err = opts.validate(methodPyramidLevel); err != nil {
		return nil, nil, err
	}
	if in.Backbone == nil {
		return nil, nil, fmt.Errorf("%s: %w", methodPyramidLevel, ErrEmptyBackbone)
	}

	lvl := strconv.Itoa(in.Level)
	reducedName := "C" + lvl + "_reduced"
	finalName := "P" + lvl

	// 1x1 projection to the target channel width, always the first
	// operation on a raw backbone input.
	pyramid := g.Apply(graph.OpConv, reducedName, in.Level, graph.RoleReduced,
		convAttrs(reduceKernel, strideOne, strideOne, opts), in.Backbone)

	if opts.FullyChained {
		// Merge first, then resample the merged feature: every coarser
		// level's content rides down the whole chain.
		if in.AdditionInput != nil {
			pyramid = mergeLevel(g, pyramid, in.AdditionInput, in.Level, opts)
		}
		if in.UpsampleTarget != nil {
			upsampled = upsampleLevel(g, pyramid, in.UpsampleTarget, in.Level, in.IsLast, opts)
		}
	} else {
		// Resample the unmerged reduction first, then merge: each level's
		// resample sees only the previous level's merge.
		if in.UpsampleTarget != nil {
			upsampled = upsampleLevel(g, pyramid, in.UpsampleTarget, in.Level, in.IsLast, opts)
		}
		if in.AdditionInput != nil {
			pyramid = mergeLevel(g, pyramid, in.AdditionInput, in.Level, opts)
		}
	}

	// 3x3 refinement produces the level's final output.
	final = g.Apply(graph.OpConv, finalName, in.Level, graph.RoleFinal,
		convAttrs(refineKernel, strideOne, strideOne, opts), pyramid)

	return final, upsampled, nil
}

// PyramidFeatures records the full top-down pyramid over backbone and
// returns the output mapping keyed by pyramid names ("P3", "P4", ...).
// Each backbone level yields one output level; IncludeFinalLayers adds
// two synthetic coarser levels at ranks max+1 and max+2.
//
// Levels are visited coarsest-first; each iteration hands its resampled
// feature to the next as the addition input. The coarsest level has no
// addition input and the finest produces no resampled feature.
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

	// Iterate by descending index over the ascending-rank pairs:
	// idx = n-1 is the coarsest level, idx = 0 the finest.
	var carry *graph.Node // upsampled feature retained from the coarser iteration
	n := len(pairs)
	for idx := n - 1; idx >= 0; idx-- {
		in := LevelInput{
			Backbone:      backbone[pairs[idx].Name],
			AdditionInput: carry,
			Level:         pairs[idx].Rank,
			IsLast:        idx == 1,
		}
		if idx > 0 {
			// Shape template toward the next finer level.
			in.UpsampleTarget = backbone[pairs[idx-1].Name]
		}

		final, upsampled, err := PyramidLevel(g, in, opts)
		if err != nil {
			return nil, err
		}
		out[pyramidName(pairs[idx].Rank)] = final
		carry = upsampled
	}

	if opts.IncludeFinalLayers {
		appendFinalLayers(g, backbone[pairs[n-1].Name], pairs[n-1], out, opts)
	}

	return out, nil
}

// appendFinalLayers synthesizes two extra coarser levels from the single
// coarsest backbone feature: a stride-2 convolution at rank+1, then ReLU
// followed by another stride-2 convolution at rank+2. Independent of any
// per-level loop state.
func appendFinalLayers(g *graph.Graph, coarsest *graph.Node, p levels.Pair, out map[string]*graph.Node, opts Options) {
	// Second-to-last pyramid layer: 3x3 stride-2 conv on the coarsest backbone.
	plusOne := p.Rank + 1
	first := g.Apply(graph.OpConv, pyramidName(plusOne), plusOne, graph.RoleFinal,
		convAttrs(refineKernel, strideTwo, strideTwo, opts), coarsest)
	out[pyramidName(plusOne)] = first

	// Last pyramid layer: ReLU then 3x3 stride-2 conv on the previous one.
	plusTwo := p.Rank + 2
	act := g.Apply(graph.OpReLU, p.Name+"_relu", plusTwo, graph.RoleNone, graph.Attrs{}, first)
	second := g.Apply(graph.OpConv, pyramidName(plusTwo), plusTwo, graph.RoleFinal,
		convAttrs(refineKernel, strideTwo, strideTwo, opts), act)
	out[pyramidName(plusTwo)] = second
}

// mergeLevel combines the reduced feature with the coarser level's
// upsampled feature under the configured MergeMode.
func mergeLevel(g *graph.Graph, reduced, addition *graph.Node, level int, opts Options) *graph.Node {
	name := pyramidName(level) + "_merged"
	op := graph.OpAdd
	if opts.Merge == MergeConcat {
		op = graph.OpConcat
	}

	return g.Apply(op, name, level, graph.RoleMerged, graph.Attrs{NDim: opts.NDim}, reduced, addition)
}

// upsampleLevel resamples src toward target. Template mode is a single
// resize to target's shape; learned mode is a stride-2 transposed
// convolution followed by a shape fix (reflection padding when the input
// shape is variable, a template resize otherwise). isLast drops the
// temporal stride to 1 in 3-D.
func upsampleLevel(g *graph.Graph, src, target *graph.Node, level int, isLast bool, opts Options) *graph.Node {
	upName := pyramidName(level) + "_upsampled"
	if !opts.LearnedUpsampling {
		return g.Apply(graph.OpResize, upName, level, graph.RoleUpsampled,
			graph.Attrs{NDim: opts.NDim, Interp: opts.Interp}, src, target)
	}

	// Learned upsampling assumes each backbone level is half the
	// resolution of the previous one; the depth axis of the
	// second-to-finest level does not double, hence temporal extent 1.
	a := graph.Attrs{
		Kernel:  upKernel,
		Stride:  strideTwo,
		NDim:    opts.NDim,
		Filters: opts.FeatureSize,
	}
	if opts.NDim == graph.NDim3 {
		zSize := strideTwo
		if isLast {
			zSize = strideOne
		}
		a.ZKernel, a.ZStride = zSize, zSize
	}
	up := g.Apply(graph.OpConvTranspose, upName, level, graph.RoleUpsampled, a, src)

	// Fix the off-by-one shape errors created by halving odd dimensions.
	fixName := pyramidName(level) + "_shapefix"
	if opts.VariableInput {
		return g.Apply(graph.OpReflectPad, fixName, level, graph.RoleUpsampled,
			graph.Attrs{NDim: opts.NDim}, up, target)
	}

	return g.Apply(graph.OpResize, fixName, level, graph.RoleUpsampled,
		graph.Attrs{NDim: opts.NDim, Interp: opts.Interp}, up, target)
}

// convAttrs assembles convolution attributes for the configured
// dimensionality: in 3-D the temporal kernel matches the spatial one and
// zStride applies; in 2-D temporal fields stay zero.
func convAttrs(kernel, stride, zStride int, opts Options) graph.Attrs {
	a := graph.Attrs{
		Kernel:  kernel,
		Stride:  stride,
		NDim:    opts.NDim,
		Filters: opts.FeatureSize,
	}
	if opts.NDim == graph.NDim3 {
		a.ZKernel = kernel
		a.ZStride = zStride
	}

	return a
}

// pyramidName renders the output key for a rank: pyramidName(5) = "P5".
func pyramidName(rank int) string {
	return "P" + strconv.Itoa(rank)
}
