// Package colormap maps scalar slices to RGB through a value window and a
// named color lookup table.
//
// Named maps come from cogentcore's colormap registry and are matched
// case-insensitively. A "_r" suffix reverses any map. gray, twoway and
// phase are built here.
package colormap

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"

	ccmap "cogentcore.org/core/colors/colormap"
)

// ErrUnknownColormap is returned by Lookup for names that are not registered
var ErrUnknownColormap = errors.New("unknown colormap")

// Colormap maps normalized values [0, 1] to colors.
type Colormap interface {
	// RGB returns the color at t with channels in [0, 1]
	RGB(t float64) [3]float64
}

// LinearColormap linearly interpolates between evenly spaced anchor colors.
type LinearColormap struct {
	anchors [][3]float64
}

// NewLinear creates a colormap from 8-bit anchor colors
func NewLinear(colors []color.RGBA) LinearColormap {
	anchors := make([][3]float64, len(colors))
	for i, c := range colors {
		anchors[i] = toRGB(c)
	}
	return LinearColormap{anchors: anchors}
}

// RGB returns the color at position t (0-1).
func (c LinearColormap) RGB(t float64) [3]float64 {
	last := len(c.anchors) - 1
	if t <= 0 {
		return c.anchors[0]
	}
	if t >= 1 {
		return c.anchors[last]
	}

	idx := t * float64(last)
	lower := int(idx)
	upper := lower + 1
	if upper > last {
		upper = last
	}

	frac := idx - float64(lower)
	lo, hi := c.anchors[lower], c.anchors[upper]
	return [3]float64{
		lo[0] + frac*(hi[0]-lo[0]),
		lo[1] + frac*(hi[1]-lo[1]),
		lo[2] + frac*(hi[2]-lo[2]),
	}
}

// libraryMap adapts a cogentcore map to Colormap
type libraryMap struct {
	m *ccmap.Map
}

func (c libraryMap) RGB(t float64) [3]float64 {
	return toRGB(c.m.Map(float32(t)))
}

func toRGB(c color.RGBA) [3]float64 {
	return [3]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

type reversed struct {
	cm Colormap
}

func (r reversed) RGB(t float64) [3]float64 {
	return r.cm.RGB(1 - t)
}

// Reverse returns cm running from t=1 to t=0
func Reverse(cm Colormap) Colormap {
	if r, ok := cm.(reversed); ok {
		return r.cm
	}
	return reversed{cm: cm}
}

// sample returns n colors of cm evenly spaced from t=from to t=to
func sample(cm Colormap, n int, from, to float64) [][3]float64 {
	out := make([][3]float64, n)
	for i := range out {
		t := from
		if n > 1 {
			t = from + (to-from)*float64(i)/float64(n-1)
		}
		out[i] = cm.RGB(t)
	}
	return out
}

var aliases = map[string]string{
	"grey":      "gray",
	"gist_gray": "gray",
	"greys_r":   "gray",
	"diverging": "twoway",
	"cyclic":    "phase",
}

// library finds a cogentcore map by case-insensitive name
func library(name string) *ccmap.Map {
	for key, m := range ccmap.AvailableMaps {
		if strings.EqualFold(key, name) {
			return m
		}
	}
	return nil
}

// Lookup returns the colormap registered under name (case-insensitive)
func Lookup(name string) (Colormap, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}

	switch key {
	case "gray":
		return Gray, nil
	case "phase":
		return Phase, nil
	case "twoway":
		return TwoWay()
	}
	if m := library(key); m != nil {
		return libraryMap{m: m}, nil
	}
	if base, ok := strings.CutSuffix(key, "_r"); ok && base != "" {
		if cm, err := Lookup(base); err == nil {
			return Reverse(cm), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColormap, name)
}

// Names returns the registered colormap names in sorted order
func Names() []string {
	seen := map[string]bool{"gray": true, "phase": true, "twoway": true}
	for _, name := range ccmap.AvailableMapsList() {
		seen[strings.ToLower(name)] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
