package slicer

import (
	"volslice/internal/models"
)

// SamplePoint returns the value of frame 0 of a real volume at one world
// point, with edge voxels repeated outside the volume.
func SamplePoint(vol *models.Volume, point [3]float64, order int) (float64, error) {
	f, err := NewField(vol, 0, order)
	if err != nil {
		return 0, err
	}
	vox, err := WorldToVoxel(vol.Affine, point)
	if err != nil {
		return 0, err
	}
	return f.Interpolate(vox, Nearest), nil
}

// WorldToVoxel maps one world point into the voxel space of affine
func WorldToVoxel(affine models.Affine, point [3]float64) ([3]float64, error) {
	inv, err := invertLinear(affine)
	if err != nil {
		return [3]float64{}, err
	}
	t := affine.Translation()
	var out [3]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r] += inv.At(r, c) * (point[c] - t[c])
		}
	}
	return out, nil
}

// CenterOfMass returns the world position of the brightest plane along each
// axis of frame 0 of a real volume.
func CenterOfMass(vol *models.Volume) [3]float64 {
	dims := vol.Dims()
	sums := [3][]float64{make([]float64, dims[0]), make([]float64, dims[1]), make([]float64, dims[2])}
	for k := 0; k < dims[2]; k++ {
		for j := 0; j < dims[1]; j++ {
			for i := 0; i < dims[0]; i++ {
				v := vol.At(i, j, k, 0)
				sums[0][i] += v
				sums[1][j] += v
				sums[2][k] += v
			}
		}
	}

	var idx [3]float64
	for a := 0; a < 3; a++ {
		best := 0
		for n, v := range sums[a] {
			if v > sums[a][best] {
				best = n
			}
		}
		idx[a] = float64(best)
	}
	return vol.Affine.Apply(idx)
}
