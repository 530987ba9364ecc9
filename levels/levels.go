package levels

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for level-name parsing and ordering.
var (
	// ErrMalformedLevelName indicates a level name contains no digits,
	// so no resolution rank can be extracted.
	// Usage: if errors.Is(err, ErrMalformedLevelName) { /* fix naming */ }.
	ErrMalformedLevelName = errors.New("levels: level name has no embedded rank")

	// ErrDuplicateRank indicates two names within one mapping resolve to
	// the same rank, making pyramid adjacency ambiguous.
	// Usage: if errors.Is(err, ErrDuplicateRank) { /* dedupe levels */ }.
	ErrDuplicateRank = errors.New("levels: duplicate rank in level mapping")
)

// Pair couples a level name with its extracted rank.
// Higher rank means coarser resolution (smaller spatial extent).
type Pair struct {
	Name string
	Rank int
}

// Rank extracts the first run of decimal digits in name as the level's
// resolution rank: Rank("C3")=3, Rank("P12_td")=12.
// Returns ErrMalformedLevelName when name contains no digits.
func Rank(name string) (int, error) {
	var (
		rank  int  // accumulated value of the first digit run
		found bool // whether at least one digit was seen
	)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < '0' || c > '9' {
			if found {
				break // end of the first digit run
			}
			continue
		}
		rank = rank*10 + int(c-'0')
		found = true
	}
	if !found {
		return 0, fmt.Errorf("Rank(%q): %w", name, ErrMalformedLevelName)
	}

	return rank, nil
}

// SortedPairs returns the (name, rank) pairs of m ordered by ascending
// rank, ties broken by name. The result is identical across repeated
// calls with the same mapping, regardless of map iteration order.
// Fails with ErrMalformedLevelName or ErrDuplicateRank before returning
// any partial ordering.
func SortedPairs[V any](m map[string]V) ([]Pair, error) {
	pairs := make([]Pair, 0, len(m))
	for name := range m {
		rank, err := Rank(name)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Name: name, Rank: rank})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Rank != pairs[j].Rank {
			return pairs[i].Rank < pairs[j].Rank
		}
		return pairs[i].Name < pairs[j].Name
	})

	// Adjacent duplicates are visible only after sorting.
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Rank == pairs[i-1].Rank {
			return nil, fmt.Errorf("SortedPairs: %q and %q both rank %d: %w",
				pairs[i-1].Name, pairs[i].Name, pairs[i].Rank, ErrDuplicateRank)
		}
	}

	return pairs, nil
}

// SortedNames returns the names of m ordered by ascending rank.
// See SortedPairs for the ordering and error contract.
func SortedNames[V any](m map[string]V) ([]string, error) {
	pairs, err := SortedPairs(m)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.Name
	}

	return names, nil
}
