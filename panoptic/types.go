package panoptic

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/pyramid/graph"
)

// Sentinel errors for panoptic pyramid construction.
var (
	// ErrEmptyBackbone indicates the input level mapping has no entries.
	ErrEmptyBackbone = errors.New("panoptic: backbone mapping must have at least one level")

	// ErrUnsupportedTemporalMode indicates a TemporalMode outside the
	// closed enum.
	// Usage: if errors.Is(err, ErrUnsupportedTemporalMode) { ... }.
	ErrUnsupportedTemporalMode = errors.New("panoptic: unsupported temporal mode")

	// ErrLiteRequires2D indicates the lite depthwise refinement was
	// requested for a 3-dimensional network.
	ErrLiteRequires2D = errors.New("panoptic: lite mode does not work with 3 dimensional networks")

	// ErrBadFrames indicates FramesPerBatch below 1.
	ErrBadFrames = errors.New("panoptic: frames per batch must be at least 1")
)

// TemporalMode selects the strategy that folds a sequence axis into a
// pyramid level. A closed enum, validated before any node is emitted.
type TemporalMode int

const (
	// TemporalNone passes the feature through unchanged.
	TemporalNone TemporalMode = iota
	// TemporalConv fuses frames with a frames×3×3 convolution followed by
	// batch normalization and ReLU.
	TemporalConv
	// TemporalLSTM fuses frames with recurrent convolutional LSTM cells.
	TemporalLSTM
	// TemporalGRU fuses frames with gated recurrent convolutional cells.
	TemporalGRU
)

// Valid reports whether m is a member of the closed enum.
func (m TemporalMode) Valid() bool {
	switch m {
	case TemporalNone, TemporalConv, TemporalLSTM, TemporalGRU:
		return true
	default:
		return false
	}
}

// String returns the canonical lowercase tag for m.
func (m TemporalMode) String() string {
	switch m {
	case TemporalNone:
		return "none"
	case TemporalConv:
		return "conv"
	case TemporalLSTM:
		return "lstm"
	case TemporalGRU:
		return "gru"
	default:
		return "temporal(?)"
	}
}

// DefaultFeatureSize is the channel width every level is projected to
// unless overridden.
const DefaultFeatureSize = 256

// Options configures PyramidFeatures and MergeTemporalFeatures.
type Options struct {
	// NDim is the spatial dimensionality of the feature maps (2 or 3).
	NDim int
	// FeatureSize is the uniform channel width of all pyramid levels.
	FeatureSize int
	// Lite substitutes a channel-preserving depthwise convolution for the
	// full 3x3 refinement. 2-D only.
	Lite bool
	// IncludeFinalLayers appends two synthetic coarser levels derived
	// from the coarsest backbone feature (ranks max+1 and max+2).
	IncludeFinalLayers bool
	// Interp selects interpolation for the template resample.
	Interp graph.Interp
	// TemporalMode selects the per-level temporal fusion strategy.
	TemporalMode TemporalMode
	// FramesPerBatch is the sequence length fused by TemporalConv.
	FramesPerBatch int
}

// DefaultOptions returns the canonical configuration: 2-D, 256-wide
// levels, full-conv refinement, bilinear resampling, no synthetic
// levels, no temporal fusion.
func DefaultOptions() Options {
	return Options{
		NDim:           graph.NDim2,
		FeatureSize:    DefaultFeatureSize,
		Interp:         graph.Bilinear,
		TemporalMode:   TemporalNone,
		FramesPerBatch: 1,
	}
}

// validate rejects unsupported enumerated values before any node is
// emitted. method tags the error with the calling constructor.
func (o Options) validate(method string) error {
	if !graph.ValidNDim(o.NDim) {
		return fmt.Errorf("%s: ndim=%d: %w", method, o.NDim, graph.ErrUnsupportedDimensionality)
	}
	if o.Lite && o.NDim == graph.NDim3 {
		return fmt.Errorf("%s: %w", method, ErrLiteRequires2D)
	}
	if !o.Interp.Valid() {
		return fmt.Errorf("%s: interp=%d: %w", method, o.Interp, graph.ErrUnsupportedInterpolation)
	}
	if !o.TemporalMode.Valid() {
		return fmt.Errorf("%s: mode=%d: %w", method, o.TemporalMode, ErrUnsupportedTemporalMode)
	}
	if o.FramesPerBatch < 1 {
		return fmt.Errorf("%s: frames=%d: %w", method, o.FramesPerBatch, ErrBadFrames)
	}

	return nil
}
