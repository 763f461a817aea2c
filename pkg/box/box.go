// Package box provides the axis-aligned world-space bounding box that anchors
// and scales every slicing plane.
package box

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"volslice/internal/models"
)

var (
	// ErrEmptyMask is returned when a mask volume has no nonzero voxel
	ErrEmptyMask = errors.New("mask has no nonzero voxels")

	// ErrBadShape is returned for volumes with fewer than three spatial dimensions
	ErrBadShape = errors.New("volume needs three spatial dimensions")
)

// Box is an axis-aligned box in world space with Start <= End on every axis
type Box struct {
	Start [3]float64
	End   [3]float64
}

// FromCorners creates a box from two opposite corners given in any order
func FromCorners(a, b [3]float64) Box {
	var bx Box
	for i := 0; i < 3; i++ {
		bx.Start[i] = math.Min(a[i], b[i])
		bx.End[i] = math.Max(a[i], b[i])
	}
	return bx
}

// FromCenterSize creates a box from its center and its size along each axis
func FromCenterSize(center, size [3]float64) Box {
	var a, b [3]float64
	for i := 0; i < 3; i++ {
		a[i] = center[i] - size[i]/2
		b[i] = center[i] + size[i]/2
	}
	return FromCorners(a, b)
}

// FromImage creates the box enclosing the full voxel extent of a volume.
// All eight corners of the voxel grid are transformed, so rotations, flips
// and axis permutations in the affine still yield Start <= End.
func FromImage(shape []int, affine models.Affine) (Box, error) {
	if len(shape) < 3 {
		return Box{}, fmt.Errorf("%w: shape %v", ErrBadShape, shape)
	}

	corners := make([][3]float64, 0, 8)
	for _, i := range []float64{0, float64(shape[0])} {
		for _, j := range []float64{0, float64(shape[1])} {
			for _, k := range []float64{0, float64(shape[2])} {
				corners = append(corners, affine.Apply([3]float64{i, j, k}))
			}
		}
	}
	return enclose(corners, 0), nil
}

// FromMask creates the box enclosing all nonzero voxels of a mask volume,
// padded on every side by padding world-space units. Only the first frame
// of a 4D mask is considered.
func FromMask(mask *models.Volume, padding float64) (Box, error) {
	if len(mask.Shape) < 3 {
		return Box{}, fmt.Errorf("%w: shape %v", ErrBadShape, mask.Shape)
	}

	dims := mask.Dims()
	lo := [3]int{dims[0], dims[1], dims[2]}
	hi := [3]int{-1, -1, -1}
	for k := 0; k < dims[2]; k++ {
		for j := 0; j < dims[1]; j++ {
			for i := 0; i < dims[0]; i++ {
				if !nonzero(mask, mask.Index(i, j, k, 0)) {
					continue
				}
				idx := [3]int{i, j, k}
				for a := 0; a < 3; a++ {
					if idx[a] < lo[a] {
						lo[a] = idx[a]
					}
					if idx[a] > hi[a] {
						hi[a] = idx[a]
					}
				}
			}
		}
	}
	if hi[0] < 0 {
		return Box{}, ErrEmptyMask
	}

	first := mask.Affine.Apply([3]float64{float64(lo[0]), float64(lo[1]), float64(lo[2])})
	last := mask.Affine.Apply([3]float64{float64(hi[0]), float64(hi[1]), float64(hi[2])})
	return enclose([][3]float64{first, last}, padding), nil
}

func nonzero(v *models.Volume, idx int) bool {
	if v.Complex != nil {
		return v.Complex[idx] != 0
	}
	return v.Data[idx] != 0
}

// enclose returns the per-axis min/max of the points, grown by pad
func enclose(points [][3]float64, pad float64) Box {
	var bx Box
	coords := make([]float64, len(points))
	for a := 0; a < 3; a++ {
		for n, p := range points {
			coords[n] = p[a]
		}
		bx.Start[a] = floats.Min(coords) - pad
		bx.End[a] = floats.Max(coords) + pad
	}
	return bx
}

// Diag returns the vector from Start to End
func (b Box) Diag() [3]float64 {
	return [3]float64{b.End[0] - b.Start[0], b.End[1] - b.Start[1], b.End[2] - b.Start[2]}
}

// Center returns the geometric center of the box
func (b Box) Center() [3]float64 {
	return [3]float64{
		(b.Start[0] + b.End[0]) / 2,
		(b.Start[1] + b.End[1]) / 2,
		(b.Start[2] + b.End[2]) / 2,
	}
}

// SlicePositions returns n points evenly spaced along the diagonal between
// the fractions lo and hi (0 is Start, 1 is End).
func (b Box) SlicePositions(n int, lo, hi float64) [][3]float64 {
	if n < 1 {
		return nil
	}
	ts := make([]float64, n)
	if n == 1 {
		ts[0] = lo
	} else {
		floats.Span(ts, lo, hi)
	}

	diag := b.Diag()
	out := make([][3]float64, n)
	for s, t := range ts {
		for a := 0; a < 3; a++ {
			out[s][a] = b.Start[a] + diag[a]*t
		}
	}
	return out
}

// String returns a readable description of the box
func (b Box) String() string {
	return fmt.Sprintf("Box Start: %v End: %v", b.Start, b.End)
}
