package fpn_test

import (
	"fmt"

	"github.com/katalvlaran/pyramid/fpn"
	"github.com/katalvlaran/pyramid/graph"
	"github.com/katalvlaran/pyramid/levels"
)

// ExamplePyramidFeatures demonstrates the canonical RetinaNet-style
// construction: {C3, C4, C5} with two synthetic coarser levels appended,
// yielding {P3, P4, P5, P6, P7}.
func ExamplePyramidFeatures() {
	g := graph.New()
	backbone := map[string]*graph.Node{
		"C3": g.Input("C3", 3),
		"C4": g.Input("C4", 4),
		"C5": g.Input("C5", 5),
	}

	opts := fpn.DefaultOptions()
	opts.IncludeFinalLayers = true
	pyramid, _ := fpn.PyramidFeatures(g, backbone, opts)

	names, _ := levels.SortedNames(pyramid)
	fmt.Println("levels:", names)
	fmt.Println("P6 from C5:", pyramid["P6"].DependsOn(backbone["C5"]))
	fmt.Println("P6 from C3:", pyramid["P6"].DependsOn(backbone["C3"]))

	// Output:
	// levels: [P3 P4 P5 P6 P7]
	// P6 from C5: true
	// P6 from C3: false
}
