// Package render turns composited slices into images: display orientation,
// upsampling, contour and crosshair overlays, and PNG output.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"volslice/pkg/raster"
)

var (
	// ErrUnknownFilter is returned for unsupported upsampling filter names
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrUnknownOrigin is returned for origins other than lower and upper
	ErrUnknownOrigin = errors.New("unknown origin")
)

// Origin says where raster row 0 is drawn
type Origin int

const (
	// Lower draws row 0 at the bottom so that world "up" points up
	Lower Origin = iota
	// Upper draws row 0 at the top
	Upper
)

// ParseOrigin parses "lower" or "upper"; empty means Lower
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(s) {
	case "", "lower":
		return Lower, nil
	case "upper":
		return Upper, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOrigin, s)
}

var filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"bilinear":   imaging.Linear,
	"hann":       imaging.Hann,
	"hanning":    imaging.Hann,
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"bicubic":    imaging.CatmullRom,
}

// ParseFilter returns the resampling filter with the given name
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	return f, nil
}

// ToImage converts an RGB raster with channels in [0, 1] to an 8-bit image
func ToImage(rgb *raster.RGB, origin Origin) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, rgb.W, rgb.H))
	for y := 0; y < rgb.H; y++ {
		for x := 0; x < rgb.W; x++ {
			c := rgb.At(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: 255})
		}
	}
	if origin == Lower {
		return imaging.FlipV(img)
	}
	return img
}

func to8(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Round(255 * math.Max(0, math.Min(1, v))))
}

// Upsample enlarges img by an integer factor
func Upsample(img image.Image, factor int, filter imaging.ResampleFilter) *image.NRGBA {
	if factor <= 1 {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, filter)
}
