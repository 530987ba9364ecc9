package panoptic_test

import (
	"fmt"

	"github.com/katalvlaran/pyramid/graph"
	"github.com/katalvlaran/pyramid/levels"
	"github.com/katalvlaran/pyramid/panoptic"
)

// ExamplePyramidFeatures demonstrates a lite panoptic pyramid with
// temporal GRU fusion over a five-frame sequence.
func ExamplePyramidFeatures() {
	g := graph.New()
	backbone := map[string]*graph.Node{
		"C3": g.Input("C3", 3),
		"C4": g.Input("C4", 4),
		"C5": g.Input("C5", 5),
	}

	opts := panoptic.DefaultOptions()
	opts.TemporalMode = panoptic.TemporalGRU
	opts.FramesPerBatch = 5
	pyramid, _ := panoptic.PyramidFeatures(g, backbone, opts)

	names, _ := levels.SortedNames(pyramid)
	fmt.Println("levels:", names)
	fmt.Println("P3 fused by:", pyramid["P3"].Op())

	// Output:
	// levels: [P3 P4 P5]
	// P3 fused by: conv_gru
}
