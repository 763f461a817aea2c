package colormap

import (
	"errors"
	"fmt"
	"math"

	"volslice/pkg/raster"
)

// ErrInvalidWindow is returned for windows that are empty, inverted or not finite
var ErrInvalidWindow = errors.New("invalid window")

// Window is a (min, max) value range
type Window [2]float64

// Validate checks that the window has a finite, positive span
func (w Window) Validate() error {
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v is not finite", ErrInvalidWindow, w)
		}
	}
	if !(w[0] < w[1]) {
		return fmt.Errorf("%w: %v has no span", ErrInvalidWindow, w)
	}
	return nil
}

// Diverging reports whether the window straddles zero
func (w Window) Diverging() bool {
	return w[0] < 0 && w[1] > 0
}

// Normalize maps v into [0, 1]. Diverging windows use two slopes so that
// zero lands on 0.5; other windows are linear. NaN stays NaN.
func (w Window) Normalize(v float64) float64 {
	var t float64
	if w.Diverging() {
		if v < 0 {
			t = 0.5 * (v - w[0]) / -w[0]
		} else {
			t = 0.5 + 0.5*v/w[1]
		}
	} else {
		t = (v - w[0]) / (w[1] - w[0])
	}
	return clip01(t)
}

func clip01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Colorize normalizes data with clim and looks each value up in the named
// colormap. NaN values come out black.
func Colorize(data *raster.Scalar, name string, clim Window) (*raster.RGB, error) {
	cm, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return ColorizeWith(data, cm, clim)
}

// ColorizeWith is Colorize with an explicit colormap
func ColorizeWith(data *raster.Scalar, cm Colormap, clim Window) (*raster.RGB, error) {
	if err := clim.Validate(); err != nil {
		return nil, err
	}

	out := raster.NewRGB(data.W, data.H)
	for p, v := range data.Pix {
		t := clim.Normalize(v)
		if math.IsNaN(t) {
			continue
		}
		rgb := cm.RGB(t)
		copy(out.Pix[3*p:3*p+3], rgb[:])
	}
	return out, nil
}

// ScaleClip maps data linearly so that lims[0] becomes 0 and lims[1]
// becomes 1, clipping everything outside.
func ScaleClip(data *raster.Scalar, lims Window) (*raster.Scalar, error) {
	if err := lims.Validate(); err != nil {
		return nil, err
	}
	out := raster.NewScalar(data.W, data.H)
	for p, v := range data.Pix {
		out.Pix[p] = ScaleClipValue(v, lims)
	}
	return out, nil
}

// ScaleClipValue applies ScaleClip to one value; lims must be valid
func ScaleClipValue(v float64, lims Window) float64 {
	return clip01((v - lims[0]) / (lims[1] - lims[0]))
}
