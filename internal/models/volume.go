package models

import (
	"fmt"
	"math"
)

// Affine maps voxel indices (plus a homogeneous 1) to world-space
// coordinates. It is a plain array so two affines compare with ==.
type Affine [4][4]float64

// Identity returns the identity transform
func Identity() Affine {
	return Affine{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Scaling returns an affine with the given voxel sizes and origin
func Scaling(voxelSize, origin [3]float64) Affine {
	a := Identity()
	for i := 0; i < 3; i++ {
		a[i][i] = voxelSize[i]
		a[i][3] = origin[i]
	}
	return a
}

// Apply transforms a voxel-space point into world space
func (a Affine) Apply(p [3]float64) [3]float64 {
	var out [3]float64
	for r := 0; r < 3; r++ {
		out[r] = a[r][0]*p[0] + a[r][1]*p[1] + a[r][2]*p[2] + a[r][3]
	}
	return out
}

// Linear returns the 3x3 linear part of the transform in row-major order
func (a Affine) Linear() []float64 {
	lin := make([]float64, 0, 9)
	for r := 0; r < 3; r++ {
		lin = append(lin, a[r][0], a[r][1], a[r][2])
	}
	return lin
}

// Translation returns the translation column of the transform
func (a Affine) Translation() [3]float64 {
	return [3]float64{a[0][3], a[1][3], a[2][3]}
}

// Volume represents a 3D or 4D volume with its voxel-to-world transform
type Volume struct {
	// Shape is (nx, ny, nz) or (nx, ny, nz, nt)
	Shape []int

	// Affine maps voxel indices to world coordinates
	Affine Affine

	// Data holds real-valued voxels, x varying fastest.
	// Nil when the volume is complex.
	Data []float64

	// Complex holds complex-valued voxels in the same layout as Data.
	// Nil when the volume is real.
	Complex []complex128
}

// NewVolume creates a zero-filled real volume
func NewVolume(shape []int, affine Affine) *Volume {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Volume{
		Shape:  append([]int(nil), shape...),
		Affine: affine,
		Data:   make([]float64, n),
	}
}

// Validate checks that the shape and the data length agree
func (v *Volume) Validate() error {
	if len(v.Shape) != 3 && len(v.Shape) != 4 {
		return fmt.Errorf("volume must have 3 or 4 dimensions, got %d", len(v.Shape))
	}
	n := 1
	for _, s := range v.Shape {
		if s < 1 {
			return fmt.Errorf("invalid volume shape %v", v.Shape)
		}
		n *= s
	}
	switch {
	case v.Data != nil && v.Complex != nil:
		return fmt.Errorf("volume cannot hold both real and complex data")
	case v.Data != nil && len(v.Data) != n:
		return fmt.Errorf("volume shape %v needs %d voxels, got %d", v.Shape, n, len(v.Data))
	case v.Complex != nil && len(v.Complex) != n:
		return fmt.Errorf("volume shape %v needs %d voxels, got %d", v.Shape, n, len(v.Complex))
	case v.Data == nil && v.Complex == nil:
		return fmt.Errorf("volume has no data")
	}
	return nil
}

// Dims returns the three spatial dimensions
func (v *Volume) Dims() [3]int {
	return [3]int{v.Shape[0], v.Shape[1], v.Shape[2]}
}

// Frames returns the number of volumes in a time series (1 for 3D data)
func (v *Volume) Frames() int {
	if len(v.Shape) == 4 {
		return v.Shape[3]
	}
	return 1
}

// IsComplex reports whether the volume holds complex data
func (v *Volume) IsComplex() bool {
	return v.Complex != nil
}

// Index returns the flat index of voxel (i, j, k) in frame t
func (v *Volume) Index(i, j, k, t int) int {
	return ((t*v.Shape[2]+k)*v.Shape[1]+j)*v.Shape[0] + i
}

// At returns the real voxel value at (i, j, k) in frame t
func (v *Volume) At(i, j, k, t int) float64 {
	return v.Data[v.Index(i, j, k, t)]
}

// Set stores a real voxel value at (i, j, k) in frame t
func (v *Volume) Set(i, j, k, t int, value float64) {
	v.Data[v.Index(i, j, k, t)] = value
}

// Frame returns the real voxels of frame t as a sub-slice of Data
func (v *Volume) Frame(t int) []float64 {
	n := v.Shape[0] * v.Shape[1] * v.Shape[2]
	return v.Data[t*n : (t+1)*n]
}

// ComplexFrame returns the complex voxels of frame t as a sub-slice of Complex
func (v *Volume) ComplexFrame(t int) []complex128 {
	n := v.Shape[0] * v.Shape[1] * v.Shape[2]
	return v.Complex[t*n : (t+1)*n]
}

// Finite returns a copy of a real volume with NaN and Inf voxels set to zero
func (v *Volume) Finite() *Volume {
	out := &Volume{
		Shape:  append([]int(nil), v.Shape...),
		Affine: v.Affine,
		Data:   make([]float64, len(v.Data)),
	}
	for i, x := range v.Data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		out.Data[i] = x
	}
	return out
}
