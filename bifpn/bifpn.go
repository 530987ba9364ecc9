package bifpn

import (
	"fmt"
	"strconv"

	"github.com/katalvlaran/pyramid/graph"
	"github.com/katalvlaran/pyramid/levels"
)

// File-local constants: method tag and kernel geometry (no magic literals).
const (
	methodPyramidFeatures = "PyramidFeatures"

	projectKernel = 1 // 1x1 input projection
	refineKernel  = 3 // 3x3 depthwise refinement / synthesis kernel
	strideOne     = 1
	strideTwo     = 2
	resampleScale = 2 // fixed factor for upsample and max-pool
	synthLevels   = 2 // extra coarsest levels added by synthesis
)

// levelState is one level's wiring within a single pass, keyed by
// integer rank with explicit per-phase slots. The slots, not derived
// string keys, are the wiring source of truth.
type levelState struct {
	rank int
	in   *graph.Node // projected input
	td   *graph.Node // top-down intermediate; nil for the coarsest level
	out  *graph.Node // pass output
}

// PyramidFeatures records opts.Phi bidirectional fusion passes over
// features and returns the final output mapping keyed by pyramid names
// ("P3", "P4", ...). The output mapping of each pass becomes the input
// mapping of the next; synthesis (when requested) happens on the first
// pass only.
//
// Complexity: O(Phi·n) nodes for n input levels.
func PyramidFeatures(g *graph.Graph, features map[string]*graph.Node, opts Options) (map[string]*graph.Node, error) {
	if err := opts.validate(methodPyramidFeatures); err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%s: %w", methodPyramidFeatures, ErrEmptyFeatures)
	}
	if _, err := levels.SortedPairs(features); err != nil {
		return nil, fmt.Errorf("%s: %w", methodPyramidFeatures, err)
	}
	effective := len(features)
	if opts.IncludeFinalLayers {
		effective += synthLevels
	}
	if effective < 2 {
		return nil, fmt.Errorf("%s: %d level(s): %w", methodPyramidFeatures, effective, ErrTooFewLevels)
	}

	current := features
	for pass := 0; pass < opts.Phi; pass++ {
		pairs, err := levels.SortedPairs(current)
		if err != nil {
			// Outputs are always well-named; only pass 0 can fail above.
			return nil, fmt.Errorf("%s: %w", methodPyramidFeatures, err)
		}

		synthesize := opts.IncludeFinalLayers && pass == 0
		states := buildInputs(g, current, pairs, pass, synthesize, opts)
		buildTopDown(g, states, pass, opts)
		buildBottomUp(g, states, pass, opts)

		next := make(map[string]*graph.Node, len(states))
		for _, s := range states {
			next["P"+strconv.Itoa(s.rank)] = s.out
		}
		current = next
	}

	return current, nil
}

// buildInputs projects every level to the uniform channel width and,
// when synthesize is set, derives two extra coarsest levels from the
// coarsest available input. Returns states ordered by ascending rank.
func buildInputs(g *graph.Graph, features map[string]*graph.Node, pairs []levels.Pair, pass int, synthesize bool, opts Options) []*levelState {
	states := make([]*levelState, 0, len(pairs)+synthLevels)

	// Projection blocks, finest to coarsest (ascending rank keeps the
	// state slice index-addressable in both phases).
	for _, p := range pairs {
		in := convBlock(g, features[p.Name], opts.FeatureSize, projectKernel, strideOne,
			p.Rank, blockName(pass, p.Rank), opts)
		states = append(states, &levelState{rank: p.Rank, in: in})
	}

	if synthesize {
		// Two successive stride-2 conv blocks on the coarsest input; both
		// emerge at the uniform width and need no further projection.
		coarsest := pairs[len(pairs)-1]
		plusOne := convBlock(g, features[coarsest.Name], opts.FeatureSize, refineKernel, strideTwo,
			coarsest.Rank+1, blockName(pass, coarsest.Rank+1), opts)
		plusTwo := convBlock(g, plusOne, opts.FeatureSize, refineKernel, strideTwo,
			coarsest.Rank+2, blockName(pass, coarsest.Rank+2), opts)
		states = append(states,
			&levelState{rank: coarsest.Rank + 1, in: plusOne},
			&levelState{rank: coarsest.Rank + 2, in: plusTwo},
		)
	}

	return states
}

// buildTopDown records the top-down phase: from the second-coarsest
// level down to the finest, upsample the previous step's output (the
// coarsest projected input on the first step), add the level's projected
// input, refine depthwise. Fills every state's td except the coarsest.
func buildTopDown(g *graph.Graph, states []*levelState, pass int, opts Options) {
	for idx := len(states) - 2; idx >= 0; idx-- {
		source := states[idx+1].td
		if source == nil {
			// First step: nothing above has a top-down intermediate yet.
			source = states[idx+1].in
		}

		rank := states[idx].rank
		up := g.Apply(graph.OpUpsample, prefix(pass)+"P"+strconv.Itoa(states[idx+1].rank)+"_U",
			states[idx+1].rank, graph.RoleUpsampled,
			graph.Attrs{Scale: resampleScale, Interp: opts.Interp, NDim: opts.NDim}, source)
		sum := g.Apply(graph.OpAdd, prefix(pass)+"P"+strconv.Itoa(rank)+"_td", rank, graph.RoleMerged,
			graph.Attrs{NDim: opts.NDim}, up, states[idx].in)
		states[idx].td = depthwiseConvBlock(g, sum, refineKernel, strideOne,
			rank, graph.RoleTopDown, prefix(pass)+"U_P"+strconv.Itoa(rank), opts)
	}
}

// buildBottomUp records the bottom-up phase: the finest output is its
// top-down intermediate; each coarser level sums the max-pooled previous
// output, its own top-down intermediate (absent for the coarsest), and
// its own projected input, then refines depthwise. Fills every state's
// out.
func buildBottomUp(g *graph.Graph, states []*levelState, pass int, opts Options) {
	var down *graph.Node // pooled carry from the previous (finer) level
	for idx, s := range states {
		rank := strconv.Itoa(s.rank)

		switch {
		case idx == 0:
			// Finest level: exactly one contributing term.
			s.out = s.td
		case s.td != nil:
			// Interior level: three contributing terms.
			sum := g.Apply(graph.OpAdd, prefix(pass)+"P"+rank+"_out", s.rank, graph.RoleMerged,
				graph.Attrs{NDim: opts.NDim}, down, s.td, s.in)
			s.out = depthwiseConvBlock(g, sum, refineKernel, strideOne,
				s.rank, graph.RoleFinal, prefix(pass)+"D_P"+rank, opts)
		default:
			// Coarsest level: beyond the top-down range, two terms.
			sum := g.Apply(graph.OpAdd, prefix(pass)+"P"+rank+"_out", s.rank, graph.RoleMerged,
				graph.Attrs{NDim: opts.NDim}, down, s.in)
			s.out = depthwiseConvBlock(g, sum, refineKernel, strideOne,
				s.rank, graph.RoleFinal, prefix(pass)+"D_P"+rank, opts)
		}

		if idx < len(states)-1 {
			down = g.Apply(graph.OpMaxPool, prefix(pass)+"P"+rank+"_D", s.rank, graph.RoleDownsampled,
				graph.Attrs{Kernel: resampleScale, Stride: strideTwo, NDim: opts.NDim}, s.out)
		}
	}
}

// convBlock records conv → batch-norm → ReLU at the given width and
// returns the activation node, tagged RoleInput at level rank.
func convBlock(g *graph.Graph, x *graph.Node, width, kernel, stride, rank int, name string, opts Options) *graph.Node {
	out := g.Apply(graph.OpConv, name+"_conv", rank, graph.RoleNone,
		graph.Attrs{Kernel: kernel, Stride: stride, NDim: opts.NDim, Filters: width}, x)
	out = g.Apply(graph.OpBatchNorm, name+"_bn", rank, graph.RoleNone,
		graph.Attrs{NDim: opts.NDim}, out)

	return g.Apply(graph.OpReLU, name+"_relu", rank, graph.RoleInput, graph.Attrs{NDim: opts.NDim}, out)
}

// depthwiseConvBlock records depthwise-conv → batch-norm → ReLU and
// returns the activation node tagged with role at level rank.
func depthwiseConvBlock(g *graph.Graph, x *graph.Node, kernel, stride, rank int, role graph.Role, name string, opts Options) *graph.Node {
	out := g.Apply(graph.OpDepthwiseConv, name+"_dconv", rank, graph.RoleNone,
		graph.Attrs{Kernel: kernel, Stride: stride, NDim: opts.NDim}, x)
	out = g.Apply(graph.OpBatchNorm, name+"_bn", rank, graph.RoleNone,
		graph.Attrs{NDim: opts.NDim}, out)

	return g.Apply(graph.OpReLU, name+"_relu", rank, role, graph.Attrs{NDim: opts.NDim}, out)
}

// blockName renders a projection/synthesis block name: "BiFPN_0_P5".
func blockName(pass, rank int) string {
	return prefix(pass) + "P" + strconv.Itoa(rank)
}

// prefix renders the per-pass name prefix: "BiFPN_0_".
func prefix(pass int) string {
	return "BiFPN_" + strconv.Itoa(pass) + "_"
}
