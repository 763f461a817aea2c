package main

import (
	"fmt"

	"volslice/pkg/colormap"
	"volslice/pkg/config"
	"volslice/pkg/layer"
	"volslice/pkg/raster"
	"volslice/pkg/slicer"
	"volslice/pkg/volume"
)

// layerConfig converts one scene entry into layer options
func layerConfig(lc config.LayerConfig) (layer.Config, error) {
	cfg := layer.Config{
		Name:          lc.Name,
		Volume:        layer.PathRef(lc.Volume),
		Scale:         lc.Scale,
		Index:         lc.Index,
		InterpOrder:   lc.InterpOrder,
		MaskThreshold: lc.MaskThreshold,
		BoxPadding:    lc.BoxPadding,
		AlphaValue:    lc.AlphaValue,
		AlphaScale:    lc.AlphaScale,
	}
	if lc.Mask != "" {
		cfg.Mask = layer.PathRef(lc.Mask)
	}
	if lc.Alpha != "" {
		cfg.Alpha = layer.PathRef(lc.Alpha)
	}
	if lc.Boundary != "" {
		b, err := slicer.ParseBoundary(lc.Boundary)
		if err != nil {
			return layer.Config{}, err
		}
		cfg.Boundary = &b
	}
	if lc.Component != "" {
		c, err := layer.ParseComponent(lc.Component)
		if err != nil {
			return layer.Config{}, err
		}
		cfg.Component = &c
	}
	if lc.Colormap != "" {
		cfg.Colormap = layer.Ptr(lc.Colormap)
	}
	if lc.Background != "" {
		cfg.Background = layer.Ptr(lc.Background)
	}
	if len(lc.Clim) == 2 {
		cfg.Clim = &colormap.Window{lc.Clim[0], lc.Clim[1]}
	}
	if len(lc.ClimPercentiles) == 2 {
		cfg.ClimPercentiles = &[2]float64{lc.ClimPercentiles[0], lc.ClimPercentiles[1]}
	}
	if len(lc.AlphaLim) == 2 {
		cfg.AlphaLim = &colormap.Window{lc.AlphaLim[0], lc.AlphaLim[1]}
	}
	return cfg, nil
}

// buildLayers loads every layer of the scene in order
func buildLayers(cfg *config.Config) ([]*layer.Layer, error) {
	layers := make([]*layer.Layer, 0, len(cfg.Layers))
	for i, lc := range cfg.Layers {
		lcfg, err := layerConfig(lc)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		l, err := layer.New(lcfg)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		lo, hi := volume.Stats(l.Volume())
		log.Infof("Loaded layer %s: %d frame(s), range %.4g..%.4g, clim %.4g..%.4g, colormap %s",
			l.Name(), l.Frames(), lo, hi, l.Clim()[0], l.Clim()[1], l.Colormap())
		layers = append(layers, l)
	}
	return layers, nil
}

// compose blends the stack, or interleaves the first two layers when a
// checkerboard square size is set
func compose(layers []*layer.Layer, s *slicer.Slicer, square int) (*raster.RGB, error) {
	if square <= 0 {
		return layer.BlendLayers(layers, s)
	}
	a, err := layers[0].Color(s)
	if err != nil {
		return nil, err
	}
	b, err := layers[1].Color(s)
	if err != nil {
		return nil, err
	}
	return raster.Checkerboard(a, b, square)
}

// contourLevels maps levels given in alpha data units through the alpha
// window and keeps those strictly inside the range of the alpha slice
func contourLevels(levels []float64, lims colormap.Window, alpha *raster.Scalar) []float64 {
	lo, hi := alpha.MinMax()
	valid := lims.Validate() == nil
	out := make([]float64, 0, len(levels))
	for _, v := range levels {
		if valid {
			v = colormap.ScaleClipValue(v, lims)
		}
		if lo < v && v < hi {
			out = append(out, v)
		}
	}
	return out
}
