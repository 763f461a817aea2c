package main

import (
	"strings"

	"volslice/pkg/box"
	"volslice/pkg/config"
	"volslice/pkg/layer"
	"volslice/pkg/slicer"
)

// plane is one image to render
type plane struct {
	slicer *slicer.Slicer

	// frame is the base volume frame, or -1 to keep each layer's own
	frame int

	// cursor is drawn as a crosshair when set
	cursor *[3]float64
}

// cursorPoint returns the point three-axis and timeseries slices pass through
func cursorPoint(cfg config.SlicingConfig, base *layer.Layer) [3]float64 {
	switch {
	case cfg.Point != nil:
		return *cfg.Point
	case strings.EqualFold(cfg.Cursor, "com"):
		return slicer.CenterOfMass(base.Volume())
	}
	return base.Box().Center()
}

// planPlanes lays out the slices requested by the scene
func planPlanes(cfg config.SlicingConfig, bbox box.Box, point [3]float64, frames int) (string, []plane, error) {
	axis, err := slicer.ParseAxis(cfg.Axis)
	if err != nil {
		return "", nil, err
	}
	orient, err := slicer.ParseOrientation(cfg.Orientation)
	if err != nil {
		return "", nil, err
	}
	params := slicer.Params{
		Box:         bbox,
		Axis:        axis,
		Samples:     cfg.Samples,
		Orientation: orient,
		CacheSize:   cfg.CacheSize,
	}

	var planes []plane
	var label string
	switch {
	case cfg.ThreeAxis:
		label = "ortho"
		for _, a := range []slicer.Axis{slicer.X, slicer.Y, slicer.Z} {
			p := params
			p.Axis = a
			p.Point = &point
			s, err := slicer.New(p)
			if err != nil {
				return "", nil, err
			}
			planes = append(planes, plane{slicer: s, frame: -1, cursor: &point})
		}

	case cfg.Timeseries:
		label = "t"
		p := params
		p.Point = &point
		s, err := slicer.New(p)
		if err != nil {
			return "", nil, err
		}
		for t := 0; t < frames; t++ {
			planes = append(planes, plane{slicer: s, frame: t, cursor: &point})
		}

	default:
		label = axis.String()
		for _, pos := range bbox.SlicePositions(cfg.Count, cfg.Limits[0], cfg.Limits[1]) {
			p := params
			p.Position = pos[axis]
			s, err := slicer.New(p)
			if err != nil {
				return "", nil, err
			}
			planes = append(planes, plane{slicer: s, frame: -1})
		}
	}
	return label, planes, nil
}
