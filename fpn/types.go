package fpn

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/pyramid/graph"
)

// Sentinel errors for top-down pyramid construction.
var (
	// ErrEmptyBackbone indicates the input level mapping has no entries.
	// Usage: if errors.Is(err, ErrEmptyBackbone) { /* feed the backbone */ }.
	ErrEmptyBackbone = errors.New("fpn: backbone mapping must have at least one level")

	// ErrUnsupportedMergeMode indicates a MergeMode outside the closed enum.
	// Usage: if errors.Is(err, ErrUnsupportedMergeMode) { /* pick MergeSum/MergeConcat */ }.
	ErrUnsupportedMergeMode = errors.New("fpn: unsupported merge mode")
)

// MergeMode selects how a reduced backbone feature is combined with the
// coarser level's upsampled feature. A closed enum, validated before
// any node is emitted.
type MergeMode int

const (
	// MergeSum is element-wise addition, the default.
	MergeSum MergeMode = iota
	// MergeConcat is channel-axis concatenation.
	MergeConcat
)

// Valid reports whether m is a member of the closed enum.
func (m MergeMode) Valid() bool {
	return m == MergeSum || m == MergeConcat
}

// String returns the canonical lowercase tag for m.
func (m MergeMode) String() string {
	switch m {
	case MergeSum:
		return "sum"
	case MergeConcat:
		return "concat"
	default:
		return "merge(?)"
	}
}

// DefaultFeatureSize is the channel width every level is projected to
// unless overridden.
const DefaultFeatureSize = 256

// Options configures PyramidFeatures and PyramidLevel.
type Options struct {
	// NDim is the spatial dimensionality of the feature maps (2 or 3).
	NDim int
	// FeatureSize is the uniform channel width of all pyramid levels.
	FeatureSize int
	// IncludeFinalLayers appends two synthetic coarser levels derived
	// from the coarsest backbone feature (ranks max+1 and max+2).
	IncludeFinalLayers bool
	// FullyChained selects merge-before-resample ordering, carrying every
	// coarser level's content down the whole chain.
	FullyChained bool
	// LearnedUpsampling replaces the template resize with a stride-2
	// transposed convolution plus a shape-correction step.
	LearnedUpsampling bool
	// VariableInput selects reflection padding as the shape correction
	// for learned upsampling (odd spatial sizes do not halve exactly).
	// Ignored unless LearnedUpsampling is set.
	VariableInput bool
	// Merge selects the element-wise combination strategy.
	Merge MergeMode
	// Interp selects interpolation for template resizes.
	Interp graph.Interp
}

// DefaultOptions returns the canonical configuration: 2-D, 256-wide
// levels, non-chained ordering, template bilinear upsampling, additive
// merge, no synthetic levels.
func DefaultOptions() Options {
	return Options{
		NDim:        graph.NDim2,
		FeatureSize: DefaultFeatureSize,
		Merge:       MergeSum,
		Interp:      graph.Bilinear,
	}
}

// validate rejects unsupported enumerated values before any node is
// emitted. method tags the error with the calling constructor.
func (o Options) validate(method string) error {
	if !graph.ValidNDim(o.NDim) {
		return fmt.Errorf("%s: ndim=%d: %w", method, o.NDim, graph.ErrUnsupportedDimensionality)
	}
	if !o.Merge.Valid() {
		return fmt.Errorf("%s: merge=%d: %w", method, o.Merge, ErrUnsupportedMergeMode)
	}
	if !o.Interp.Valid() {
		return fmt.Errorf("%s: interp=%d: %w", method, o.Interp, graph.ErrUnsupportedInterpolation)
	}

	return nil
}

// LevelInput is the per-level wiring consumed by PyramidLevel.
type LevelInput struct {
	// Backbone is the raw backbone feature for this level. Required.
	Backbone *graph.Node
	// UpsampleTarget is the next finer backbone feature, used as the
	// resample shape template. Nil for the finest level.
	UpsampleTarget *graph.Node
	// AdditionInput is the coarser level's retained upsampled feature.
	// Nil for the coarsest level.
	AdditionInput *graph.Node
	// Level is the rank used in node names ("C5_reduced", "P5", ...).
	Level int
	// IsLast marks the second-to-finest level: its learned 3-D resample
	// uses temporal stride 1 instead of 2.
	IsLast bool
}
