package raster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *RGB {
	img := NewRGB(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, [3]float64{float64(x) / float64(w), float64(y) / float64(h), 0.25})
		}
	}
	return img
}

func constant(w, h int, v float64) *Scalar {
	s := NewScalar(w, h)
	for i := range s.Pix {
		s.Pix[i] = v
	}
	return s
}

func TestBlendEndpoints(t *testing.T) {
	under := gradient(5, 3)
	over := Filled(5, 3, [3]float64{1, 0.5, 0})

	out, err := Blend(under, over, constant(5, 3, 0))
	require.NoError(t, err)
	assert.Equal(t, under.Pix, out.Pix)

	out, err = Blend(under, over, constant(5, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, over.Pix, out.Pix)
}

func TestBlendHalf(t *testing.T) {
	under := Filled(2, 2, [3]float64{0, 0, 0})
	over := Filled(2, 2, [3]float64{1, 0.5, 0.25})
	out, err := Blend(under, over, constant(2, 2, 0.5))
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0.5, 0.25, 0.125}, out.At(1, 1))
}

func TestBlendShapeMismatch(t *testing.T) {
	_, err := Blend(NewRGB(2, 2), NewRGB(3, 2), constant(2, 2, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	var sm *ShapeMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, [2]int{2, 2}, sm.A)
	assert.Equal(t, [2]int{2, 3}, sm.B)
}

func TestMaskNilIsNoop(t *testing.T) {
	img := gradient(4, 4)
	out, err := MaskBack(img, nil, [3]float64{1, 1, 1})
	require.NoError(t, err)
	assert.Same(t, img, out)

	out, err = MaskOnto(img, nil, NewRGB(4, 4))
	require.NoError(t, err)
	assert.Same(t, img, out)
}

func TestMaskBack(t *testing.T) {
	img := Filled(2, 1, [3]float64{0.2, 0.4, 0.6})
	m := NewMask(2, 1)
	m.Pix[0] = true

	out, err := MaskBack(img, m, [3]float64{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0.2, 0.4, 0.6}, out.At(0, 0))
	assert.Equal(t, [3]float64{1, 1, 1}, out.At(1, 0))
	// the input is not modified
	assert.Equal(t, [3]float64{0.2, 0.4, 0.6}, img.At(1, 0))
}

func TestMaskOnto(t *testing.T) {
	img := Filled(2, 1, [3]float64{1, 0, 0})
	under := Filled(2, 1, [3]float64{0, 0, 1})
	m := NewMask(2, 1)
	m.Pix[1] = true

	out, err := MaskOnto(img, m, under)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0, 0, 1}, out.At(0, 0))
	assert.Equal(t, [3]float64{1, 0, 0}, out.At(1, 0))
}

func TestCheckerboard(t *testing.T) {
	a := Filled(5, 5, [3]float64{1, 1, 1})
	b := Filled(5, 5, [3]float64{0, 0, 0})

	out, err := Checkerboard(a, b, 2)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1, 1, 1}, out.At(0, 0))
	assert.Equal(t, [3]float64{1, 1, 1}, out.At(1, 1))
	assert.Equal(t, [3]float64{0, 0, 0}, out.At(2, 0))
	assert.Equal(t, [3]float64{0, 0, 0}, out.At(0, 3))
	assert.Equal(t, [3]float64{1, 1, 1}, out.At(4, 4))

	_, err = Checkerboard(a, NewRGB(4, 5), 2)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestThresholdAndMinMax(t *testing.T) {
	s := &Scalar{W: 3, H: 1, Pix: []float64{-1, 0.5, 2}}
	m := s.Threshold(0.5)
	assert.Equal(t, []bool{false, false, true}, m.Pix)

	lo, hi := s.MinMax()
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 2.0, hi)
}
