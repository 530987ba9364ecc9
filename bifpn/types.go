package bifpn

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/pyramid/graph"
)

// Sentinel errors for bidirectional pyramid construction.
var (
	// ErrBadPhi indicates a repeat count below 1.
	// Usage: if errors.Is(err, ErrBadPhi) { /* fix Phi */ }.
	ErrBadPhi = errors.New("bifpn: phi must be at least 1")

	// ErrEmptyFeatures indicates the input level mapping has no entries.
	ErrEmptyFeatures = errors.New("bifpn: feature mapping must have at least one level")

	// ErrTooFewLevels indicates fewer than two effective levels, leaving
	// nothing to fuse across resolutions.
	ErrTooFewLevels = errors.New("bifpn: need at least two levels to fuse")
)

// DefaultFeatureSize is the uniform channel width of all projected
// levels unless overridden.
const DefaultFeatureSize = 64

// Options configures PyramidFeatures.
type Options struct {
	// Phi is the number of sequential bidirectional passes (≥ 1); the
	// output mapping of pass k is the input mapping of pass k+1.
	Phi int
	// NDim is the spatial dimensionality; only 2 is supported.
	NDim int
	// FeatureSize is the uniform channel width after input projection.
	FeatureSize int
	// IncludeFinalLayers synthesizes two extra coarsest input levels on
	// the first pass only (ranks max+1 and max+2).
	IncludeFinalLayers bool
	// Interp selects interpolation for the fixed 2x top-down upsample.
	Interp graph.Interp
}

// DefaultOptions returns the canonical configuration: one pass, 2-D,
// 64-wide levels, nearest-neighbor upsampling, no synthetic levels.
func DefaultOptions() Options {
	return Options{
		Phi:         1,
		NDim:        graph.NDim2,
		FeatureSize: DefaultFeatureSize,
		Interp:      graph.Nearest,
	}
}

// validate rejects unsupported enumerated values before any node is
// emitted. method tags the error with the calling constructor.
func (o Options) validate(method string) error {
	if o.Phi < 1 {
		return fmt.Errorf("%s: phi=%d: %w", method, o.Phi, ErrBadPhi)
	}
	if o.NDim != graph.NDim2 {
		return fmt.Errorf("%s: ndim=%d (only 2 dimensional networks are supported): %w",
			method, o.NDim, graph.ErrUnsupportedDimensionality)
	}
	if !o.Interp.Valid() {
		return fmt.Errorf("%s: interp=%d: %w", method, o.Interp, graph.ErrUnsupportedInterpolation)
	}

	return nil
}
