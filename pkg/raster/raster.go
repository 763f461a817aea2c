// Package raster holds the 2D arrays produced by slicing and the per-pixel
// operations used to composite them. Row y runs along the slice's up axis
// and column x along its right axis.
package raster

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is matched by every ShapeMismatchError
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeMismatchError reports two images that should have had the same size
type ShapeMismatchError struct {
	A, B [2]int // (height, width)
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("image shapes do not match: %dx%d vs %dx%d", e.A[0], e.A[1], e.B[0], e.B[1])
}

// Is makes errors.Is(err, ErrShapeMismatch) true
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

func checkShape(w1, h1, w2, h2 int) error {
	if w1 != w2 || h1 != h2 {
		return &ShapeMismatchError{A: [2]int{h1, w1}, B: [2]int{h2, w2}}
	}
	return nil
}

// Scalar is a 2D float image
type Scalar struct {
	W, H int
	Pix  []float64
}

// NewScalar allocates a zeroed w x h scalar image
func NewScalar(w, h int) *Scalar {
	return &Scalar{W: w, H: h, Pix: make([]float64, w*h)}
}

// At returns the value at column x, row y
func (s *Scalar) At(x, y int) float64 { return s.Pix[y*s.W+x] }

// Set stores the value at column x, row y
func (s *Scalar) Set(x, y int, v float64) { s.Pix[y*s.W+x] = v }

// Threshold returns a mask that is true where the value exceeds t
func (s *Scalar) Threshold(t float64) *Mask {
	m := NewMask(s.W, s.H)
	for i, v := range s.Pix {
		m.Pix[i] = v > t
	}
	return m
}

// MinMax returns the smallest and largest values
func (s *Scalar) MinMax() (lo, hi float64) {
	if len(s.Pix) == 0 {
		return 0, 0
	}
	lo, hi = s.Pix[0], s.Pix[0]
	for _, v := range s.Pix[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Mask is a 2D boolean image
type Mask struct {
	W, H int
	Pix  []bool
}

// NewMask allocates an all-false w x h mask
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Pix: make([]bool, w*h)}
}

// At returns the mask value at column x, row y
func (m *Mask) At(x, y int) bool { return m.Pix[y*m.W+x] }

// RGB is a 2D color image with channels in [0, 1] and no alpha
type RGB struct {
	W, H int
	Pix  []float64 // 3 values per pixel
}

// NewRGB allocates a black w x h image
func NewRGB(w, h int) *RGB {
	return &RGB{W: w, H: h, Pix: make([]float64, 3*w*h)}
}

// Filled allocates a w x h image of a single color
func Filled(w, h int, c [3]float64) *RGB {
	img := NewRGB(w, h)
	for i := 0; i < w*h; i++ {
		copy(img.Pix[3*i:3*i+3], c[:])
	}
	return img
}

// At returns the color at column x, row y
func (img *RGB) At(x, y int) [3]float64 {
	i := 3 * (y*img.W + x)
	return [3]float64{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}
}

// Set stores the color at column x, row y
func (img *RGB) Set(x, y int, c [3]float64) {
	i := 3 * (y*img.W + x)
	copy(img.Pix[i:i+3], c[:])
}

// Clone returns a deep copy
func (img *RGB) Clone() *RGB {
	out := &RGB{W: img.W, H: img.H, Pix: make([]float64, len(img.Pix))}
	copy(out.Pix, img.Pix)
	return out
}
