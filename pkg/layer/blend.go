package layer

import (
	"errors"

	"volslice/pkg/raster"
	"volslice/pkg/slicer"
)

// ErrNoLayers is returned when compositing an empty stack
var ErrNoLayers = errors.New("no layers to blend")

// BlendLayers composites layers in order on the slicer's plane. The first
// layer is masked to its background color; each later layer is either
// alpha-blended over the running result or, without an alpha source,
// replaces it wherever its own mask is set.
func BlendLayers(layers []*Layer, s *slicer.Slicer) (*raster.RGB, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}

	result, err := baseColor(layers[0], s)
	if err != nil {
		return nil, err
	}

	for _, l := range layers[1:] {
		over, err := l.Color(s)
		if err != nil {
			return nil, err
		}

		if l.HasAlpha() {
			alpha, err := l.Alpha(s)
			if err != nil {
				return nil, err
			}
			if result, err = raster.Blend(result, over, alpha); err != nil {
				return nil, err
			}
			continue
		}

		mask, err := l.Mask(s)
		if err != nil {
			return nil, err
		}
		if result, err = raster.MaskOnto(over, mask, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func baseColor(l *Layer, s *slicer.Slicer) (*raster.RGB, error) {
	img, err := l.Color(s)
	if err != nil {
		return nil, err
	}
	mask, err := l.Mask(s)
	if err != nil {
		return nil, err
	}
	return raster.MaskBack(img, mask, l.background)
}
