package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"volslice/pkg/raster"
	"volslice/pkg/slicer"
)

// Options controls how a slice is turned into a canvas
type Options struct {
	Origin   Origin
	Upsample int

	// Filter is used for upsampling; the zero value is nearest neighbor
	Filter imaging.ResampleFilter
}

// Canvas is an upsampled slice image that overlays can be drawn on.
// Overlay coordinates are raster coordinates and are mapped through the
// same flip and scale as the pixels.
type Canvas struct {
	dc     *gg.Context
	origin Origin
	scale  float64
	height int
}

// NewCanvas converts a composited slice into a drawable image
func NewCanvas(rgb *raster.RGB, opts Options) *Canvas {
	factor := opts.Upsample
	if factor < 1 {
		factor = 1
	}
	img := Upsample(ToImage(rgb, opts.Origin), factor, opts.Filter)
	return &Canvas{
		dc:     gg.NewContextForImage(img),
		origin: opts.Origin,
		scale:  float64(factor),
		height: rgb.H,
	}
}

// pixel maps raster coordinates to canvas coordinates
func (c *Canvas) pixel(x, y float64) (float64, float64) {
	if c.origin == Lower {
		y = float64(c.height-1) - y
	}
	return (x + 0.5) * c.scale, (y + 0.5) * c.scale
}

// DrawContours strokes the iso-lines of data at each level
func (c *Canvas) DrawContours(data *raster.Scalar, levels []float64, hexColor string, width float64) int {
	c.dc.SetHexColor(hexColor)
	c.dc.SetLineWidth(width)
	n := 0
	for _, level := range levels {
		for _, s := range Contours(data, level) {
			x1, y1 := c.pixel(s.A[0], s.A[1])
			x2, y2 := c.pixel(s.B[0], s.B[1])
			c.dc.DrawLine(x1, y1, x2, y2)
			n++
		}
	}
	c.dc.Stroke()
	return n
}

// DrawCrosshair draws a full-width horizontal and full-height vertical line
// through the raster point (x, y).
func (c *Canvas) DrawCrosshair(x, y float64, hexColor string, width float64) {
	px, py := c.pixel(x, y)
	w, h := float64(c.dc.Width()), float64(c.dc.Height())
	c.dc.SetHexColor(hexColor)
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(0, py, w, py)
	c.dc.DrawLine(px, 0, px, h)
	c.dc.Stroke()
}

// Image returns the canvas contents
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// SavePNG writes the canvas to path, creating its directory
func (c *Canvas) SavePNG(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := c.dc.SavePNG(path); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

// WorldToPixel returns the raster coordinates of a world point projected
// onto the slicer's plane.
func WorldToPixel(s *slicer.Slicer, point [3]float64) (x, y float64) {
	right, up := s.InPlaneAxes()
	w, h := s.Size()
	x = frac(point[right], s.Extent[0], s.Extent[1]) * float64(w-1)
	y = frac(point[up], s.Extent[2], s.Extent[3]) * float64(h-1)
	return x, y
}

func frac(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

// FileName is the name of slice index of a sequence
func FileName(prefix, label string, index int) string {
	return fmt.Sprintf("%s_%s_%03d.png", prefix, label, index)
}

// SaveSequence writes the canvases to dir as prefix_label_000.png and so on,
// returning the written paths.
func SaveSequence(dir, prefix, label string, canvases []*Canvas) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}

	paths := make([]string, 0, len(canvases))
	for i, c := range canvases {
		path := filepath.Join(dir, FileName(prefix, label, i))
		if err := c.SavePNG(path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
