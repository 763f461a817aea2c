package render

import (
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volslice/pkg/box"
	"volslice/pkg/raster"
	"volslice/pkg/slicer"
)

// twoRows is a 2x2 raster with a red bottom row (y=0) and a blue top row
func twoRows() *raster.RGB {
	rgb := raster.NewRGB(2, 2)
	for x := 0; x < 2; x++ {
		rgb.Set(x, 0, [3]float64{1, 0, 0})
		rgb.Set(x, 1, [3]float64{0, 0, 1})
	}
	return rgb
}

func TestToImageOrigin(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	lower := ToImage(twoRows(), Lower)
	assert.Equal(t, blue, lower.NRGBAAt(0, 0))
	assert.Equal(t, red, lower.NRGBAAt(0, 1))

	upper := ToImage(twoRows(), Upper)
	assert.Equal(t, red, upper.NRGBAAt(0, 0))
	assert.Equal(t, blue, upper.NRGBAAt(1, 1))
}

func TestToImageClampsAndHandlesNaN(t *testing.T) {
	rgb := &raster.RGB{W: 1, H: 1, Pix: []float64{2, -1, math.NaN()}}
	img := ToImage(rgb, Upper)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 0, A: 255}, img.NRGBAAt(0, 0))
}

func TestUpsample(t *testing.T) {
	img := ToImage(twoRows(), Upper)
	up := Upsample(img, 3, imaging.NearestNeighbor)
	assert.Equal(t, 6, up.Bounds().Dx())
	assert.Equal(t, 6, up.Bounds().Dy())
	assert.Equal(t, img.NRGBAAt(0, 0), up.NRGBAAt(2, 2))
	assert.Equal(t, img.NRGBAAt(1, 1), up.NRGBAAt(3, 3))

	same := Upsample(img, 1, imaging.Lanczos)
	assert.Equal(t, img.Pix, same.Pix)
}

func TestParseFilterAndOrigin(t *testing.T) {
	for _, name := range []string{"nearest", "linear", "hann", "Lanczos", "catmullrom"} {
		_, err := ParseFilter(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseFilter("sinc")
	assert.ErrorIs(t, err, ErrUnknownFilter)

	o, err := ParseOrigin("upper")
	require.NoError(t, err)
	assert.Equal(t, Upper, o)
	_, err = ParseOrigin("left")
	assert.ErrorIs(t, err, ErrUnknownOrigin)
}

func TestContoursDiamond(t *testing.T) {
	data := raster.NewScalar(3, 3)
	data.Set(1, 1, 1)

	segs := Contours(data, 0.5)
	require.Len(t, segs, 4)
	for _, s := range segs {
		for _, p := range [][2]float64{s.A, s.B} {
			d := math.Abs(p[0]-1) + math.Abs(p[1]-1)
			assert.InDelta(t, 0.5, d, 1e-12)
		}
	}

	assert.Empty(t, Contours(data, 2))
	assert.Empty(t, Contours(raster.NewScalar(1, 5), 0))
}

func TestContoursStraightEdge(t *testing.T) {
	data := raster.NewScalar(4, 3)
	for y := 0; y < 3; y++ {
		data.Set(2, y, 1)
		data.Set(3, y, 1)
	}
	segs := Contours(data, 0.25)
	require.Len(t, segs, 2)
	for _, s := range segs {
		assert.InDelta(t, 1.25, s.A[0], 1e-12)
		assert.InDelta(t, 1.25, s.B[0], 1e-12)
	}
}

func TestContoursSaddle(t *testing.T) {
	data := &raster.Scalar{W: 2, H: 2, Pix: []float64{1, 0, 0, 1}}
	assert.Len(t, Contours(data, 0.25), 2)
	assert.Len(t, Contours(data, 0.75), 2)
}

func TestCanvasOverlaysAndSave(t *testing.T) {
	rgb := raster.NewRGB(10, 10)
	c := NewCanvas(rgb, Options{Origin: Lower, Upsample: 2})
	assert.Equal(t, 20, c.Image().Bounds().Dx())

	c.DrawCrosshair(4.5, 4.5, "#ff0000", 2)
	r, _, _, _ := c.Image().At(10, 3).RGBA()
	assert.Greater(t, r, uint32(0))

	alpha := raster.NewScalar(10, 10)
	for y := 3; y < 7; y++ {
		for x := 3; x < 7; x++ {
			alpha.Set(x, y, 1)
		}
	}
	assert.Greater(t, c.DrawContours(alpha, []float64{0.5}, "#00ff00", 1), 0)

	dir := t.TempDir()
	paths, err := SaveSequence(dir, "slice", "z", []*Canvas{c, NewCanvas(rgb, Options{})})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "slice_z_000.png"), filepath.Join(dir, "slice_z_001.png")}, paths)

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestWorldToPixel(t *testing.T) {
	b := box.FromCorners([3]float64{0, 0, 0}, [3]float64{10, 20, 30})
	s, err := slicer.New(slicer.Params{Box: b, Axis: slicer.Z, Position: 15, Samples: 11})
	require.NoError(t, err)
	x, y := WorldToPixel(s, [3]float64{5, 10, 15})
	assert.InDelta(t, 5, x, 1e-12)
	assert.InDelta(t, 10.5, y, 1e-12)
}
