package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pyramid/tensor"
)

// TestNewDense_Shapes verifies construction, zero initialization, and
// the ErrBadShape sentinel for degenerate extents.
func TestNewDense_Shapes(t *testing.T) {
	d, err := tensor.NewDense(4, 6, 2)
	require.NoError(t, err)

	h, w, c := d.Shape()
	assert.Equal(t, 4, h)
	assert.Equal(t, 6, w)
	assert.Equal(t, 2, c)
	assert.Zero(t, d.At(3, 5, 1))

	for _, bad := range [][3]int{{0, 6, 2}, {4, 0, 2}, {4, 6, 0}, {-1, 6, 2}} {
		_, err := tensor.NewDense(bad[0], bad[1], bad[2])
		assert.ErrorIs(t, err, tensor.ErrBadShape, "%v must be rejected", bad)
	}
}

// TestNewFilled_And_SetAt verifies fill and element round-trips.
func TestNewFilled_And_SetAt(t *testing.T) {
	d, err := tensor.NewFilled(3, 3, 2, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, d.At(0, 0, 0))
	assert.Equal(t, 1.5, d.At(2, 2, 1))

	d.Set(1, 2, 1, -4)
	assert.Equal(t, -4.0, d.At(1, 2, 1))
	assert.Equal(t, 1.5, d.At(1, 2, 0), "channels are independent planes")
}

// TestChannel verifies shared backing access and the range sentinel.
func TestChannel(t *testing.T) {
	d, err := tensor.NewDense(2, 2, 1)
	require.NoError(t, err)

	m, err := d.Channel(0)
	require.NoError(t, err)
	m.Set(1, 1, 7)
	assert.Equal(t, 7.0, d.At(1, 1, 0), "Channel returns the live plane")

	_, err = d.Channel(1)
	assert.ErrorIs(t, err, tensor.ErrChannelRange)
	_, err = d.Channel(-1)
	assert.ErrorIs(t, err, tensor.ErrChannelRange)
}

// TestEqualShape verifies the three-axis comparison.
func TestEqualShape(t *testing.T) {
	a, _ := tensor.NewDense(4, 6, 2)
	b, _ := tensor.NewDense(4, 6, 2)
	assert.True(t, a.EqualShape(b))

	for _, shape := range [][3]int{{5, 6, 2}, {4, 7, 2}, {4, 6, 3}} {
		o, _ := tensor.NewDense(shape[0], shape[1], shape[2])
		assert.False(t, a.EqualShape(o), "%v differs from 4x6x2", shape)
	}
}
