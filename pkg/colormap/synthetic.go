package colormap

import (
	"fmt"
	"image/color"
	"math"
	"sync"
)

// rampSteps is the number of samples taken from each half of TwoWay
const rampSteps = 128

// Gray runs from black to white
var Gray = NewLinear([]color.RGBA{
	{0, 0, 0, 255},
	{255, 255, 255, 255},
})

// blueRamp is a single-hue ramp from black through blue to white
var blueRamp = NewLinear([]color.RGBA{
	{0, 0, 0, 255},
	{8, 24, 110, 255},
	{20, 60, 190, 255},
	{45, 120, 240, 255},
	{110, 180, 250, 255},
	{190, 225, 255, 255},
	{255, 255, 255, 255},
})

// Phase is a cyclic hue wheel for angle data; RGB(0) == RGB(1).
var Phase = hueWheel(12)

// TwoWay returns the diverging map for signed data. The blue ramp runs
// from light to dark over [0, 0.5) and inferno from dark to light over
// [0.5, 1], so zero is black and magnitude reads as brightness on either
// side.
var TwoWay = sync.OnceValues(func() (Colormap, error) {
	pos := library("inferno")
	if pos == nil {
		return nil, fmt.Errorf("%w: twoway needs inferno", ErrUnknownColormap)
	}
	return twoWay(blueRamp, libraryMap{m: pos}), nil
})

func twoWay(neg, pos Colormap) LinearColormap {
	anchors := sample(neg, rampSteps, 1, 0)
	anchors = append(anchors, sample(pos, rampSteps, 0, 1)...)
	return LinearColormap{anchors: anchors}
}

// hueWheel builds a fully saturated hue circle with n segments
func hueWheel(n int) LinearColormap {
	anchors := make([][3]float64, n+1)
	for i := 0; i <= n; i++ {
		anchors[i] = hsvToRGB(float64(i%n)/float64(n), 0.85, 0.95)
	}
	return LinearColormap{anchors: anchors}
}

func hsvToRGB(h, s, v float64) [3]float64 {
	h6 := h * 6
	sector := math.Floor(h6)
	f := h6 - sector
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch int(sector) % 6 {
	case 0:
		return [3]float64{v, t, p}
	case 1:
		return [3]float64{q, v, p}
	case 2:
		return [3]float64{p, v, t}
	case 3:
		return [3]float64{p, q, v}
	case 4:
		return [3]float64{t, p, v}
	default:
		return [3]float64{v, p, q}
	}
}
