package fpn_test

import (
	"sort"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pyramid/fpn"
	"github.com/katalvlaran/pyramid/graph"
	"github.com/katalvlaran/pyramid/levels"
)

// backboneC345 declares the canonical {C3, C4, C5} backbone on g.
func backboneC345(g *graph.Graph) map[string]*graph.Node {
	return map[string]*graph.Node{
		"C3": g.Input("C3", 3),
		"C4": g.Input("C4", 4),
		"C5": g.Input("C5", 5),
	}
}

// sortedKeys returns the keys of m in lexicographic order.
func sortedKeys(m map[string]*graph.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TestPyramidFeatures_Cardinality verifies N inputs → N outputs with
// matching ranks, for several input sizes.
func TestPyramidFeatures_Cardinality(t *testing.T) {
	cases := []struct {
		name  string
		ranks []int
		want  []string
	}{
		{"Single", []int{5}, []string{"P5"}},
		{"Pair", []int{4, 5}, []string{"P4", "P5"}},
		{"Triple", []int{3, 4, 5}, []string{"P3", "P4", "P5"}},
		{"Quad", []int{2, 3, 4, 5}, []string{"P2", "P3", "P4", "P5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := graph.New()
			backbone := make(map[string]*graph.Node, len(tc.ranks))
			for _, r := range tc.ranks {
				name := "C" + strconv.Itoa(r)
				backbone[name] = g.Input(name, r)
			}

			out, err := fpn.PyramidFeatures(g, backbone, fpn.DefaultOptions())
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, sortedKeys(out)); diff != "" {
				t.Errorf("output level names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestPyramidFeatures_Synthesis verifies N+2 outputs with new ranks
// max+1 and max+2, each depending only on the coarsest backbone level.
func TestPyramidFeatures_Synthesis(t *testing.T) {
	g := graph.New()
	backbone := backboneC345(g)

	opts := fpn.DefaultOptions()
	opts.IncludeFinalLayers = true
	out, err := fpn.PyramidFeatures(g, backbone, opts)
	require.NoError(t, err)

	want := []string{"P3", "P4", "P5", "P6", "P7"}
	if diff := cmp.Diff(want, sortedKeys(out)); diff != "" {
		t.Errorf("output level names mismatch (-want +got):\n%s", diff)
	}

	// P6 and P7 derive from C5 alone, never from the per-level chain.
	for _, name := range []string{"P6", "P7"} {
		n := out[name]
		assert.True(t, n.DependsOn(backbone["C5"]), "%s must depend on C5", name)
		assert.False(t, n.DependsOn(backbone["C4"]), "%s must not depend on C4", name)
		assert.False(t, n.DependsOn(backbone["C3"]), "%s must not depend on C3", name)
		assert.False(t, n.DependsOn(out["P3"]), "%s must not depend on P3", name)
		assert.False(t, n.DependsOn(out["P4"]), "%s must not depend on P4", name)
		assert.False(t, n.DependsOn(out["P5"]), "%s must not depend on P5", name)
	}
	assert.Equal(t, 6, out["P6"].Level())
	assert.Equal(t, 7, out["P7"].Level())
	assert.True(t, out["P7"].DependsOn(out["P6"]), "P7 is derived from P6's conv")
}

// TestPyramidFeatures_EdgeRoles verifies the two optional edges are
// absent for exactly the extreme levels: the coarsest consumes no
// addition input and the finest produces no upsampled feature.
func TestPyramidFeatures_EdgeRoles(t *testing.T) {
	g := graph.New()
	backbone := backboneC345(g)
	_, err := fpn.PyramidFeatures(g, backbone, fpn.DefaultOptions())
	require.NoError(t, err)

	merged := map[int]bool{}    // level → has a merge node
	upsampled := map[int]bool{} // level → produced an upsampled feature
	for _, n := range g.Nodes() {
		switch n.Role() {
		case graph.RoleMerged:
			merged[n.Level()] = true
		case graph.RoleUpsampled:
			upsampled[n.Level()] = true
		}
	}

	assert.False(t, merged[5], "coarsest level must not merge")
	assert.True(t, merged[4] && merged[3], "interior and finest levels must merge")
	assert.False(t, upsampled[3], "finest level must not upsample")
	assert.True(t, upsampled[5] && upsampled[4], "coarser levels must upsample")
}

// TestPyramidFeatures_ChainedVsNot verifies the two orderings wire
// different dependency graphs for N≥3 even though names coincide:
// chained resamples the post-merge feature, non-chained the pre-merge one.
func TestPyramidFeatures_ChainedVsNot(t *testing.T) {
	build := func(chained bool) (*graph.Graph, map[string]*graph.Node) {
		g := graph.New()
		backbone := backboneC345(g)
		opts := fpn.DefaultOptions()
		opts.FullyChained = chained
		out, err := fpn.PyramidFeatures(g, backbone, opts)
		require.NoError(t, err)
		return g, out
	}

	gc, outChained := build(true)
	gn, outPlain := build(false)

	assert.Equal(t, sortedKeys(outChained), sortedKeys(outPlain), "names identical across modes")

	// The P4 resample feeds P3. Chained: it sees C5 through P4's merge.
	// Non-chained: it sees only the P4 reduction, never C5's content
	// via the merge (C5 reaches P3 only through the previous upsample).
	up4c, ok := gc.ByName("P4_upsampled")
	require.True(t, ok)
	up4n, ok := gn.ByName("P4_upsampled")
	require.True(t, ok)

	m4c, ok := gc.ByName("P4_merged")
	require.True(t, ok)
	m4n, ok := gn.ByName("P4_merged")
	require.True(t, ok)

	assert.True(t, up4c.DependsOn(m4c), "chained: resample consumes the merged feature")
	assert.False(t, up4n.DependsOn(m4n), "non-chained: resample precedes the merge")
}

// TestPyramidFeatures_LearnedUpsampling verifies the transposed-conv
// path, its shape-correction node, and the is-last temporal stride.
func TestPyramidFeatures_LearnedUpsampling(t *testing.T) {
	g := graph.New()
	backbone := backboneC345(g)

	opts := fpn.DefaultOptions()
	opts.NDim = 3
	opts.LearnedUpsampling = true
	opts.VariableInput = true
	opts.FullyChained = true
	_, err := fpn.PyramidFeatures(g, backbone, opts)
	require.NoError(t, err)

	up5, ok := g.ByName("P5_upsampled")
	require.True(t, ok)
	assert.Equal(t, graph.OpConvTranspose, up5.Op())
	assert.Equal(t, 2, up5.Attrs().ZStride, "coarsest level halves the depth axis")

	// C4 is the second-to-finest level: temporal stride drops to 1.
	up4, ok := g.ByName("P4_upsampled")
	require.True(t, ok)
	assert.Equal(t, 1, up4.Attrs().ZStride, "is-last level keeps depth extent")

	// Variable input shape → reflection padding as the shape fix.
	fix5, ok := g.ByName("P5_shapefix")
	require.True(t, ok)
	assert.Equal(t, graph.OpReflectPad, fix5.Op())
	assert.True(t, fix5.DependsOn(up5))
	assert.True(t, fix5.DependsOn(backbone["C4"]), "pad target is the next finer feature")

	// Without VariableInput the fix is a template resize instead.
	g2 := graph.New()
	b2 := backboneC345(g2)
	opts.VariableInput = false
	_, err = fpn.PyramidFeatures(g2, b2, opts)
	require.NoError(t, err)
	fix, ok := g2.ByName("P5_shapefix")
	require.True(t, ok)
	assert.Equal(t, graph.OpResize, fix.Op())
}

// TestPyramidFeatures_MergeConcat verifies the concat merge variant.
func TestPyramidFeatures_MergeConcat(t *testing.T) {
	g := graph.New()
	backbone := backboneC345(g)
	opts := fpn.DefaultOptions()
	opts.Merge = fpn.MergeConcat
	_, err := fpn.PyramidFeatures(g, backbone, opts)
	require.NoError(t, err)

	m, ok := g.ByName("P4_merged")
	require.True(t, ok)
	assert.Equal(t, graph.OpConcat, m.Op())
}

// TestPyramidFeatures_ConfigErrors verifies eager fail-fast validation:
// no node is emitted past the inputs when configuration is invalid.
func TestPyramidFeatures_ConfigErrors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*fpn.Options)
		wantErr error
	}{
		{"NDimZero", func(o *fpn.Options) { o.NDim = 0 }, graph.ErrUnsupportedDimensionality},
		{"NDimFour", func(o *fpn.Options) { o.NDim = 4 }, graph.ErrUnsupportedDimensionality},
		{"BadMerge", func(o *fpn.Options) { o.Merge = fpn.MergeMode(9) }, fpn.ErrUnsupportedMergeMode},
		{"BadInterp", func(o *fpn.Options) { o.Interp = graph.Interp(9) }, graph.ErrUnsupportedInterpolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := graph.New()
			backbone := backboneC345(g)
			before := g.Len()

			opts := fpn.DefaultOptions()
			tc.mutate(&opts)
			_, err := fpn.PyramidFeatures(g, backbone, opts)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, before, g.Len(), "no nodes may be emitted on config error")
		})
	}
}

// TestPyramidFeatures_InputErrors verifies empty and malformed mappings
// fail with their sentinels before any operator runs.
func TestPyramidFeatures_InputErrors(t *testing.T) {
	g := graph.New()
	_, err := fpn.PyramidFeatures(g, nil, fpn.DefaultOptions())
	assert.ErrorIs(t, err, fpn.ErrEmptyBackbone)

	bad := map[string]*graph.Node{"X": g.Input("X", 0)}
	before := g.Len()
	_, err = fpn.PyramidFeatures(g, bad, fpn.DefaultOptions())
	assert.ErrorIs(t, err, levels.ErrMalformedLevelName)
	assert.Equal(t, before, g.Len(), "no nodes may be emitted for malformed names")
}

// TestPyramidFeatures_Deterministic verifies two identical runs record
// node-for-node identical graphs.
func TestPyramidFeatures_Deterministic(t *testing.T) {
	summary := func() []string {
		g := graph.New()
		backbone := backboneC345(g)
		opts := fpn.DefaultOptions()
		opts.IncludeFinalLayers = true
		_, err := fpn.PyramidFeatures(g, backbone, opts)
		require.NoError(t, err)

		var lines []string
		for _, n := range g.Nodes() {
			line := n.Name() + "|" + n.Op().String() + "|" + n.Role().String()
			for _, in := range n.Inputs() {
				line += "<" + in.Name()
			}
			lines = append(lines, line)
		}
		return lines
	}

	first := summary()
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, summary()); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

// TestPyramidLevel_SingleLevel verifies a lone level builds with neither
// optional edge present.
func TestPyramidLevel_SingleLevel(t *testing.T) {
	g := graph.New()
	c5 := g.Input("C5", 5)

	final, upsampled, err := fpn.PyramidLevel(g, fpn.LevelInput{Backbone: c5, Level: 5}, fpn.DefaultOptions())
	require.NoError(t, err)
	assert.Nil(t, upsampled, "no target, no resample")
	assert.Equal(t, "P5", final.Name())
	assert.Equal(t, graph.RoleFinal, final.Role())
	assert.Equal(t, 256, final.Attrs().Filters)
}
