package graph

import "errors"

// Sentinel errors shared by the pyramid builders' configuration checks.
var (
	// ErrUnsupportedDimensionality indicates a spatial dimensionality
	// outside the supported set {2, 3}.
	// Usage: if errors.Is(err, ErrUnsupportedDimensionality) { ... }.
	ErrUnsupportedDimensionality = errors.New("graph: only 2 and 3 dimensional networks are supported")

	// ErrUnsupportedInterpolation indicates an interpolation mode outside
	// the closed Interp enum.
	// Usage: if errors.Is(err, ErrUnsupportedInterpolation) { ... }.
	ErrUnsupportedInterpolation = errors.New("graph: unsupported interpolation mode")
)

// Supported spatial dimensionalities.
const (
	NDim2 = 2 // planar feature maps (H, W, C)
	NDim3 = 3 // volumetric / temporal feature maps (Z, H, W, C)
)

// ValidNDim reports whether ndim is a supported spatial dimensionality.
func ValidNDim(ndim int) bool {
	return ndim == NDim2 || ndim == NDim3
}

// Interp selects the interpolation used by resize and upsample nodes.
type Interp int

const (
	// Bilinear interpolation: distance-weighted average of the four
	// nearest source samples.
	Bilinear Interp = iota
	// Nearest interpolation: copy of the nearest source sample.
	Nearest
)

// Valid reports whether ip is a member of the closed enum.
func (ip Interp) Valid() bool {
	return ip == Bilinear || ip == Nearest
}

// String returns the canonical lowercase tag for ip.
func (ip Interp) String() string {
	switch ip {
	case Bilinear:
		return "bilinear"
	case Nearest:
		return "nearest"
	default:
		return "interp(?)"
	}
}

// OpKind identifies the operator a Node records.
type OpKind int

const (
	// OpInput is a backbone feed declared by the caller; it has no inputs.
	OpInput OpKind = iota
	// OpConv is a spatial convolution (kernel, stride, filters in Attrs).
	OpConv
	// OpDepthwiseConv is a channel-preserving depthwise convolution.
	OpDepthwiseConv
	// OpConvTranspose is a learned stride-2 upsampling convolution.
	OpConvTranspose
	// OpBatchNorm is per-channel normalization.
	OpBatchNorm
	// OpReLU is the rectifier activation.
	OpReLU
	// OpAdd is element-wise addition of same-shaped inputs.
	OpAdd
	// OpConcat is channel-axis concatenation of inputs.
	OpConcat
	// OpResize resamples input[0] to the spatial shape of input[1].
	OpResize
	// OpUpsample resamples its input by the fixed factor Attrs.Scale.
	OpUpsample
	// OpMaxPool downsamples by max-pooling with stride Attrs.Stride.
	OpMaxPool
	// OpReflectPad reflection-pads input[0] up to the shape of input[1].
	OpReflectPad
	// OpConvLSTM is recurrent convolutional fusion across a sequence axis.
	OpConvLSTM
	// OpConvGRU is gated recurrent convolutional fusion across a sequence axis.
	OpConvGRU
)

// opNames is indexed by OpKind; keep in sync with the constant block.
var opNames = [...]string{
	"input", "conv", "depthwise_conv", "conv_transpose", "batch_norm",
	"relu", "add", "concat", "resize", "upsample", "max_pool",
	"reflect_pad", "conv_lstm", "conv_gru",
}

// String returns the canonical lowercase tag for k.
func (k OpKind) String() string {
	if k < 0 || int(k) >= len(opNames) {
		return "op(?)"
	}
	return opNames[k]
}

// Role tags the part a node plays within its pyramid level. Roles and
// integer levels, not derived string keys, are the wiring source of truth.
type Role int

const (
	// RoleNone marks helper nodes with no level-specific part.
	RoleNone Role = iota
	// RoleInput marks a raw backbone feed or a projected per-level input.
	RoleInput
	// RoleReduced marks the 1x1 channel projection of a backbone feature.
	RoleReduced
	// RoleUpsampled marks the resampled feature handed to the next finer level.
	RoleUpsampled
	// RoleMerged marks the element-wise combination of two features.
	RoleMerged
	// RoleTopDown marks a bidirectional pass's top-down intermediate.
	RoleTopDown
	// RoleDownsampled marks a bidirectional pass's pooled carry-down.
	RoleDownsampled
	// RoleFinal marks a level's final pyramid output.
	RoleFinal
)

// roleNames is indexed by Role; keep in sync with the constant block.
var roleNames = [...]string{
	"none", "input", "reduced", "upsampled", "merged",
	"top_down", "downsampled", "final",
}

// String returns the canonical lowercase tag for r.
func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return "role(?)"
	}
	return roleNames[r]
}

// Attrs carries the typed operator parameters a Node records. Zero
// values mean "not applicable" for the node's OpKind; eval and any
// downstream executor read only the fields their op defines.
type Attrs struct {
	// Kernel is the square spatial kernel extent (1 for 1x1, 3 for 3x3).
	Kernel int
	// Stride is the spatial stride (1 or 2).
	Stride int
	// ZKernel is the temporal kernel extent for 3-D and temporal convs
	// (frames-per-batch for temporal fusion).
	ZKernel int
	// ZStride is the temporal stride for 3-D convs and transposes.
	ZStride int
	// NDim is the spatial dimensionality the op was emitted for.
	NDim int
	// Filters is the output channel width; 0 preserves the input width.
	Filters int
	// Scale is the fixed resampling factor for OpUpsample.
	Scale int
	// Interp selects interpolation for OpResize and OpUpsample.
	Interp Interp
}
