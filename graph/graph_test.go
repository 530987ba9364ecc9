package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/pyramid/graph"
)

// TestGraph_EmissionOrder verifies sequential IDs and topological order.
func TestGraph_EmissionOrder(t *testing.T) {
	g := graph.New()
	c5 := g.Input("C5", 5)
	red := g.Apply(graph.OpConv, "C5_reduced", 5, graph.RoleReduced,
		graph.Attrs{Kernel: 1, Stride: 1, Filters: 256, NDim: 2}, c5)
	fin := g.Apply(graph.OpConv, "P5", 5, graph.RoleFinal,
		graph.Attrs{Kernel: 3, Stride: 1, Filters: 256, NDim: 2}, red)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []int{0, 1, 2}, []int{c5.ID(), red.ID(), fin.ID()})

	// Every node's inputs precede it in emission order.
	for _, n := range g.Nodes() {
		for _, in := range n.Inputs() {
			assert.Less(t, in.ID(), n.ID(), "input %s must precede %s", in.Name(), n.Name())
		}
	}
}

// TestGraph_ByName verifies lookup and metadata round-trip.
func TestGraph_ByName(t *testing.T) {
	g := graph.New()
	c3 := g.Input("C3", 3)
	up := g.Apply(graph.OpResize, "P4_upsampled", 4, graph.RoleUpsampled,
		graph.Attrs{Interp: graph.Bilinear}, c3, c3)

	got, ok := g.ByName("P4_upsampled")
	assert.True(t, ok)
	assert.Same(t, up, got)
	assert.Equal(t, graph.OpResize, got.Op())
	assert.Equal(t, 4, got.Level())
	assert.Equal(t, graph.RoleUpsampled, got.Role())
	assert.Equal(t, graph.Bilinear, got.Attrs().Interp)
	assert.Equal(t, 2, got.NumInputs())

	_, ok = g.ByName("missing")
	assert.False(t, ok)
}

// TestGraph_NameCollision verifies deterministic suffixing on reuse.
func TestGraph_NameCollision(t *testing.T) {
	g := graph.New()
	a := g.Input("P3", 3)
	b := g.Apply(graph.OpReLU, "P3", 3, graph.RoleNone, graph.Attrs{}, a)
	c := g.Apply(graph.OpReLU, "P3", 3, graph.RoleNone, graph.Attrs{}, a)

	assert.Equal(t, "P3", a.Name())
	assert.Equal(t, "P3_2", b.Name())
	assert.Equal(t, "P3_3", c.Name())
}

// TestNode_DependsOn verifies provenance reachability.
func TestNode_DependsOn(t *testing.T) {
	g := graph.New()
	c4 := g.Input("C4", 4)
	c5 := g.Input("C5", 5)
	r5 := g.Apply(graph.OpConv, "C5_reduced", 5, graph.RoleReduced,
		graph.Attrs{Kernel: 1, Stride: 1, Filters: 8, NDim: 2}, c5)
	sum := g.Apply(graph.OpAdd, "P4_merged", 4, graph.RoleMerged, graph.Attrs{}, c4, r5)

	assert.True(t, sum.DependsOn(c4))
	assert.True(t, sum.DependsOn(c5))
	assert.True(t, sum.DependsOn(sum))
	assert.False(t, r5.DependsOn(c4))
	assert.False(t, c4.DependsOn(sum))
	assert.False(t, sum.DependsOn(nil))
}

// TestInterp_Valid covers the closed interpolation enum.
func TestInterp_Valid(t *testing.T) {
	assert.True(t, graph.Bilinear.Valid())
	assert.True(t, graph.Nearest.Valid())
	assert.False(t, graph.Interp(42).Valid())
	assert.Equal(t, "bilinear", graph.Bilinear.String())
	assert.Equal(t, "nearest", graph.Nearest.String())
}

// TestValidNDim covers the supported dimensionality set.
func TestValidNDim(t *testing.T) {
	assert.True(t, graph.ValidNDim(2))
	assert.True(t, graph.ValidNDim(3))
	assert.False(t, graph.ValidNDim(1))
	assert.False(t, graph.ValidNDim(4))
}
