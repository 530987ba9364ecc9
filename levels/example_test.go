package levels_test

import (
	"fmt"

	"github.com/katalvlaran/pyramid/levels"
)

// ExampleSortedNames demonstrates ordering a backbone mapping by rank.
// Scenario: a backbone hands over three feature maps keyed by level
// name; the builders need them finest-first regardless of map order.
func ExampleSortedNames() {
	backbone := map[string]string{
		"C5": "coarsest",
		"C3": "finest",
		"C4": "middle",
	}

	names, _ := levels.SortedNames(backbone)
	fmt.Println(names)

	// Output:
	// [C3 C4 C5]
}

// ExampleRank demonstrates rank extraction from a pyramid level name.
func ExampleRank() {
	rank, _ := levels.Rank("P6")
	fmt.Println(rank)

	// Output:
	// 6
}
