package tensor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for feature-map construction and access.
var (
	// ErrBadShape indicates a non-positive height, width, or channel count.
	// Usage: if errors.Is(err, ErrBadShape) { /* fix the shape */ }.
	ErrBadShape = errors.New("tensor: height, width and channels must be positive")

	// ErrChannelRange indicates a channel index outside [0, C).
	ErrChannelRange = errors.New("tensor: channel index out of range")
)

// Dense is an H×W feature map with C channels, stored as one mat.Dense
// per channel. Row r, column c address the spatial position; the
// channel index selects the plane.
type Dense struct {
	h, w, c  int
	channels []*mat.Dense
}

// NewDense returns a zero-valued h×w×c feature map.
// Returns ErrBadShape when any extent is below 1.
func NewDense(h, w, c int) (*Dense, error) {
	if h < 1 || w < 1 || c < 1 {
		return nil, fmt.Errorf("NewDense: %dx%dx%d: %w", h, w, c, ErrBadShape)
	}

	channels := make([]*mat.Dense, c)
	for i := range channels {
		channels[i] = mat.NewDense(h, w, nil)
	}

	return &Dense{h: h, w: w, c: c, channels: channels}, nil
}

// NewFilled returns an h×w×c feature map with every element set to v.
// Returns ErrBadShape when any extent is below 1.
func NewFilled(h, w, c int, v float64) (*Dense, error) {
	d, err := NewDense(h, w, c)
	if err != nil {
		return nil, err
	}
	for _, ch := range d.channels {
		raw := ch.RawMatrix().Data
		for i := range raw {
			raw[i] = v
		}
	}

	return d, nil
}

// Shape returns the height, width, and channel count.
func (d *Dense) Shape() (h, w, c int) {
	return d.h, d.w, d.c
}

// Channels returns the channel count.
func (d *Dense) Channels() int {
	return d.c
}

// At returns the element at row r, column col, channel ch.
// Panics like mat.Dense on out-of-range spatial indices and returns no
// error: element access is a programmer-controlled hot path.
func (d *Dense) At(r, col, ch int) float64 {
	return d.channels[ch].At(r, col)
}

// Set assigns v at row r, column col, channel ch.
func (d *Dense) Set(r, col, ch int, v float64) {
	d.channels[ch].Set(r, col, v)
}

// Channel returns the backing matrix of channel i for bulk gonum
// operations. The matrix is shared, not copied.
// Returns ErrChannelRange when i is outside [0, C).
func (d *Dense) Channel(i int) (*mat.Dense, error) {
	if i < 0 || i >= d.c {
		return nil, fmt.Errorf("Channel: index %d of %d: %w", i, d.c, ErrChannelRange)
	}

	return d.channels[i], nil
}

// EqualShape reports whether d and o have identical extents on all
// three axes.
func (d *Dense) EqualShape(o *Dense) bool {
	return d.h == o.h && d.w == o.w && d.c == o.c
}
