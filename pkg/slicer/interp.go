package slicer

import (
	"errors"
	"fmt"
	"math"

	"volslice/internal/models"
)

var (
	// ErrUnsupportedOrder is returned for interpolation orders other than 0, 1 and 3
	ErrUnsupportedOrder = errors.New("unsupported interpolation order")

	// ErrVolumeIndex is returned when a 4D volume index is out of range
	ErrVolumeIndex = errors.New("volume index out of range")
)

// Boundary controls how coordinates outside the volume are sampled
type Boundary int

const (
	// Nearest clamps coordinates to the volume, repeating the edge voxels
	Nearest Boundary = iota

	// Constant yields zero for coordinates outside [0, n-1]
	Constant
)

// ParseBoundary accepts nearest or constant
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "nearest", "":
		return Nearest, nil
	case "constant":
		return Constant, nil
	default:
		return 0, fmt.Errorf("invalid boundary mode: %s (must be nearest or constant)", s)
	}
}

// edgeTolerance absorbs rounding in the world-to-voxel transform so that
// grid points landing on the last voxel are not treated as outside.
const edgeTolerance = 1e-6

// splinePole is the single pole of the cubic B-spline prefilter
var splinePole = math.Sqrt(3) - 2

// Field is one 3D frame of a volume prepared for interpolation at a fixed
// order. For cubic interpolation the values are B-spline coefficients.
type Field struct {
	dims   [3]int
	values []float64
	order  int
}

// NewField extracts frame index of a real volume and prepares it for
// interpolation at the given order.
func NewField(vol *models.Volume, index, order int) (*Field, error) {
	if vol.IsComplex() {
		return nil, fmt.Errorf("cannot sample complex volume directly, select a component first")
	}
	if index < 0 || index >= vol.Frames() {
		return nil, fmt.Errorf("%w: %d of %d", ErrVolumeIndex, index, vol.Frames())
	}
	return NewFieldValues(vol.Dims(), vol.Frame(index), order)
}

// NewFieldValues prepares a flat x-fastest 3D array for interpolation.
// Values are copied for cubic interpolation and shared otherwise.
func NewFieldValues(dims [3]int, values []float64, order int) (*Field, error) {
	if len(values) != dims[0]*dims[1]*dims[2] {
		return nil, fmt.Errorf("field dims %v need %d values, got %d", dims, dims[0]*dims[1]*dims[2], len(values))
	}

	f := &Field{dims: dims, values: values, order: order}
	switch order {
	case 0, 1:
	case 3:
		f.values = append([]float64(nil), values...)
		f.prefilter()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedOrder, order)
	}
	return f, nil
}

// Dims returns the field's spatial dimensions
func (f *Field) Dims() [3]int { return f.dims }

// Order returns the interpolation order
func (f *Field) Order() int { return f.order }

func (f *Field) at(i, j, k int) float64 {
	return f.values[(k*f.dims[1]+j)*f.dims[0]+i]
}

// Interpolate samples the field at a voxel-space point
func (f *Field) Interpolate(p [3]float64, boundary Boundary) float64 {
	for a := 0; a < 3; a++ {
		n := float64(f.dims[a] - 1)
		if boundary == Constant && (p[a] < -edgeTolerance || p[a] > n+edgeTolerance) {
			return 0
		}
		p[a] = math.Max(0, math.Min(n, p[a]))
	}

	switch f.order {
	case 0:
		return f.at(nearestIndex(p[0], f.dims[0]), nearestIndex(p[1], f.dims[1]), nearestIndex(p[2], f.dims[2]))
	case 1:
		return f.linear(p)
	default:
		return f.cubic(p)
	}
}

func nearestIndex(x float64, n int) int {
	i := int(math.Floor(x + 0.5))
	if i >= n {
		i = n - 1
	}
	return i
}

func (f *Field) linear(p [3]float64) float64 {
	var lo, hi [3]int
	var t [3]float64
	for a := 0; a < 3; a++ {
		lo[a] = int(math.Floor(p[a]))
		t[a] = p[a] - float64(lo[a])
		hi[a] = lo[a] + 1
		if hi[a] >= f.dims[a] {
			hi[a] = f.dims[a] - 1
		}
	}

	c00 := lerp(f.at(lo[0], lo[1], lo[2]), f.at(hi[0], lo[1], lo[2]), t[0])
	c10 := lerp(f.at(lo[0], hi[1], lo[2]), f.at(hi[0], hi[1], lo[2]), t[0])
	c01 := lerp(f.at(lo[0], lo[1], hi[2]), f.at(hi[0], lo[1], hi[2]), t[0])
	c11 := lerp(f.at(lo[0], hi[1], hi[2]), f.at(hi[0], hi[1], hi[2]), t[0])
	return lerp(lerp(c00, c10, t[1]), lerp(c01, c11, t[1]), t[2])
}

// lerp is exact when a == b and when t is 0
func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func (f *Field) cubic(p [3]float64) float64 {
	var idx [3][4]int
	var w [3][4]float64
	for a := 0; a < 3; a++ {
		base := math.Floor(p[a])
		t := p[a] - base
		w[a] = bsplineWeights(t)
		for n := 0; n < 4; n++ {
			idx[a][n] = mirror(int(base)-1+n, f.dims[a])
		}
	}

	var sum float64
	for c := 0; c < 4; c++ {
		for b := 0; b < 4; b++ {
			wbc := w[1][b] * w[2][c]
			if wbc == 0 {
				continue
			}
			for a := 0; a < 4; a++ {
				sum += w[0][a] * wbc * f.at(idx[0][a], idx[1][b], idx[2][c])
			}
		}
	}
	return sum
}

func bsplineWeights(t float64) [4]float64 {
	t2 := t * t
	t3 := t2 * t
	return [4]float64{
		(1 - t) * (1 - t) * (1 - t) / 6,
		(4 - 6*t2 + 3*t3) / 6,
		(1 + 3*t + 3*t2 - 3*t3) / 6,
		t3 / 6,
	}
}

// mirror reflects an index about the edges without repeating them
func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2*n - 2
	if i < 0 {
		i = -i
	}
	i %= period
	if i >= n {
		i = period - i
	}
	return i
}

// prefilter converts samples into cubic B-spline coefficients in place,
// one axis at a time.
func (f *Field) prefilter() {
	for a := 0; a < 3; a++ {
		n := f.dims[a]
		if n < 2 {
			continue
		}
		line := make([]float64, n)
		stride := [3]int{1, f.dims[0], f.dims[0] * f.dims[1]}[a]

		var o1, o2 [2]int // the two axes other than a
		switch a {
		case 0:
			o1, o2 = [2]int{1, f.dims[0]}, [2]int{2, f.dims[0] * f.dims[1]}
		case 1:
			o1, o2 = [2]int{0, 1}, [2]int{2, f.dims[0] * f.dims[1]}
		default:
			o1, o2 = [2]int{0, 1}, [2]int{1, f.dims[0]}
		}

		for u := 0; u < f.dims[o1[0]]; u++ {
			for v := 0; v < f.dims[o2[0]]; v++ {
				start := u*o1[1] + v*o2[1]
				for s := 0; s < n; s++ {
					line[s] = f.values[start+s*stride]
				}
				filterLine(line)
				for s := 0; s < n; s++ {
					f.values[start+s*stride] = line[s]
				}
			}
		}
	}
}

func filterLine(c []float64) {
	n := len(c)
	z := splinePole
	const gain = 6.0

	for k := range c {
		c[k] *= gain
	}

	// causal initialization with mirror boundaries
	horizon := int(math.Ceil(math.Log(1e-12) / math.Log(math.Abs(z))))
	if horizon < n {
		zk := z
		sum := c[0]
		for k := 1; k < horizon; k++ {
			sum += zk * c[k]
			zk *= z
		}
		c[0] = sum
	} else {
		zk := z
		iz := 1 / z
		z2n := math.Pow(z, float64(n-1))
		sum := c[0] + z2n*c[n-1]
		z2n *= z2n * iz
		for k := 1; k < n-1; k++ {
			sum += (zk + z2n) * c[k]
			zk *= z
			z2n *= iz
		}
		c[0] = sum / (1 - zk*zk)
	}
	for k := 1; k < n; k++ {
		c[k] += z * c[k-1]
	}

	c[n-1] = (z / (z*z - 1)) * (c[n-1] + z*c[n-2])
	for k := n - 2; k >= 0; k-- {
		c[k] = z * (c[k+1] - c[k])
	}
}
