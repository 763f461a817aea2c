// Package slicer builds sampling planes through a bounding box and resamples
// volumes on them.
//
// A Slicer holds the world-space coordinates of every sample on its plane.
// Mapping those into a volume's voxel space needs the inverse of the
// volume's affine; the result is cached per affine so that layers sharing a
// space (the common case for overlays) pay for the transform once.
package slicer

import (
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"gonum.org/v1/gonum/mat"

	"volslice/internal/models"
	"volslice/pkg/box"
	"volslice/pkg/raster"
)

var (
	// ErrSingularAffine is returned when an affine's linear part cannot be inverted
	ErrSingularAffine = errors.New("affine transform is singular")

	// ErrBadSamples is returned for a sample count below one
	ErrBadSamples = errors.New("sample count must be at least 1")

	// ErrDegeneratePlane is returned when the box has no extent along an in-plane axis
	ErrDegeneratePlane = errors.New("bounding box is flat along an in-plane axis")
)

// DefaultCacheSize is the number of affines whose voxel coordinates are kept
const DefaultCacheSize = 4

// Params describes one slicing plane
type Params struct {
	// Box anchors and scales the plane
	Box box.Box

	// Axis is perpendicular to the plane
	Axis Axis

	// Position is the absolute world coordinate of the plane along Axis
	Position float64

	// Point, when set, overrides Position with its component along Axis
	Point *[3]float64

	// Samples is the number of samples along the right axis
	Samples int

	// Orientation picks the right and up axes
	Orientation Orientation

	// CacheSize is the number of voxel-coordinate sets to keep (DefaultCacheSize if zero)
	CacheSize int
}

// Slicer is a sampling grid over one plane
type Slicer struct {
	axis        Axis
	right, up   Axis
	orientation Orientation

	// width samples along the right axis, height along the up axis
	width, height int

	// Extent is (right min, right max, up min, up max) in world units
	Extent [4]float64

	// world is 3 x (width*height); column i*height+j is the point i steps
	// right and j steps up from the plane's start
	world *mat.Dense

	cache *lru.Cache[models.Affine, *VoxelCoords]
}

// New builds the world-space sampling grid for a plane
func New(p Params) (*Slicer, error) {
	if p.Samples < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadSamples, p.Samples)
	}
	if p.Axis < X || p.Axis > Z {
		return nil, fmt.Errorf("invalid axis %d", int(p.Axis))
	}
	position := p.Position
	if p.Point != nil {
		position = p.Point[p.Axis]
	}

	right, up := AxisIndices(p.Axis, p.Orientation)
	diag := p.Box.Diag()
	if diag[right] == 0 || diag[up] == 0 {
		return nil, fmt.Errorf("%w: %v", ErrDegeneratePlane, p.Box)
	}

	start := p.Box.Start
	start[p.Axis] = position

	aspect := math.Abs(diag[up]) / math.Abs(diag[right])
	height := int(math.Round(aspect * float64(p.Samples)))
	if height < 1 {
		height = 1
	}

	tr := linspace(p.Samples)
	tu := linspace(height)
	world := mat.NewDense(3, p.Samples*height, nil)
	for i, a := range tr {
		for j, b := range tu {
			col := i*height + j
			for r := 0; r < 3; r++ {
				world.Set(r, col, start[r])
			}
			world.Set(int(right), col, start[right]+diag[right]*a)
			world.Set(int(up), col, start[up]+diag[up]*b)
		}
	}

	size := p.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[models.Affine, *VoxelCoords](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create voxel coordinate cache: %w", err)
	}

	return &Slicer{
		axis:        p.Axis,
		right:       right,
		up:          up,
		orientation: p.Orientation,
		width:       p.Samples,
		height:      height,
		Extent:      [4]float64{p.Box.Start[right], p.Box.End[right], p.Box.Start[up], p.Box.End[up]},
		world:       world,
		cache:       cache,
	}, nil
}

// linspace returns n evenly spaced values from 0 to 1
func linspace(n int) []float64 {
	ts := make([]float64, n)
	for i := 1; i < n; i++ {
		ts[i] = float64(i) / float64(n-1)
	}
	return ts
}

// Axis returns the axis perpendicular to the plane
func (s *Slicer) Axis() Axis { return s.axis }

// Orientation returns the orientation convention of the plane
func (s *Slicer) Orientation() Orientation { return s.orientation }

// InPlaneAxes returns the right and up axes
func (s *Slicer) InPlaneAxes() (right, up Axis) { return s.right, s.up }

// Size returns the number of samples along the right and up axes
func (s *Slicer) Size() (width, height int) { return s.width, s.height }

// World returns the world-space point i steps right and j steps up
func (s *Slicer) World(i, j int) [3]float64 {
	col := i*s.height + j
	return [3]float64{s.world.At(0, col), s.world.At(1, col), s.world.At(2, col)}
}

// CacheLen returns the number of cached voxel-coordinate sets
func (s *Slicer) CacheLen() int { return s.cache.Len() }

// VoxelCoords is the plane mapped into the voxel space of one affine.
// Values are shared between callers and must not be modified.
type VoxelCoords struct {
	Affine models.Affine

	// Coords is 3 x (Width*Height), laid out like the slicer's world grid
	Coords *mat.Dense

	Width, Height int
}

// At returns the voxel-space point i steps right and j steps up
func (v *VoxelCoords) At(i, j int) [3]float64 {
	col := i*v.Height + j
	return [3]float64{v.Coords.At(0, col), v.Coords.At(1, col), v.Coords.At(2, col)}
}

// VoxelCoords returns the plane in the voxel space defined by affine.
// An affine exactly equal to a cached one returns the cached value itself.
func (s *Slicer) VoxelCoords(affine models.Affine) (*VoxelCoords, error) {
	if vc, ok := s.cache.Get(affine); ok {
		return vc, nil
	}

	inv, err := invertLinear(affine)
	if err != nil {
		return nil, err
	}

	t := affine.Translation()
	offset := mat.NewVecDense(3, nil)
	offset.MulVec(inv, mat.NewVecDense(3, t[:]))
	offset.ScaleVec(-1, offset)

	coords := mat.NewDense(3, s.width*s.height, nil)
	coords.Mul(inv, s.world)
	coords.Apply(func(r, _ int, v float64) float64 {
		return v + offset.AtVec(r)
	}, coords)

	vc := &VoxelCoords{Affine: affine, Coords: coords, Width: s.width, Height: s.height}
	s.cache.Add(affine, vc)
	return vc, nil
}

func invertLinear(affine models.Affine) (*mat.Dense, error) {
	lin := mat.NewDense(3, 3, affine.Linear())
	if mat.Det(lin) == 0 {
		return nil, ErrSingularAffine
	}
	var inv mat.Dense
	if err := inv.Inverse(lin); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularAffine, err)
	}
	return &inv, nil
}

// SampleOptions controls resampling
type SampleOptions struct {
	// Order is 0 (nearest), 1 (linear) or 3 (cubic B-spline)
	Order int

	// Scale multiplies every sample; zero means 1
	Scale float64

	// Volume selects the frame of a 4D volume
	Volume int

	// Boundary controls samples outside the volume
	Boundary Boundary
}

// Sample resamples a real volume on the plane. The result has one row per
// up sample and one column per right sample.
func (s *Slicer) Sample(vol *models.Volume, opts SampleOptions) (*raster.Scalar, error) {
	field, err := NewField(vol, opts.Volume, opts.Order)
	if err != nil {
		return nil, err
	}
	return s.SampleField(field, vol.Affine, opts)
}

// SampleField resamples a prepared field. opts.Order and opts.Volume are
// taken from the field.
func (s *Slicer) SampleField(f *Field, affine models.Affine, opts SampleOptions) (*raster.Scalar, error) {
	vc, err := s.VoxelCoords(affine)
	if err != nil {
		return nil, err
	}

	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	out := raster.NewScalar(s.width, s.height)
	for i := 0; i < s.width; i++ {
		for j := 0; j < s.height; j++ {
			out.Set(i, j, scale*f.Interpolate(vc.At(i, j), opts.Boundary))
		}
	}
	return out, nil
}
