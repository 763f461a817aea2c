// Package layer turns one volume, with optional mask and transparency
// volumes, into colorized slices, and composites stacks of layers.
package layer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"volslice/internal/models"
	"volslice/pkg/box"
	"volslice/pkg/colormap"
	"volslice/pkg/config"
	"volslice/pkg/raster"
	"volslice/pkg/slicer"
)

var log = config.NamedLogger("layer")

var (
	// ErrNoVolume is returned when a layer is configured without a volume
	ErrNoVolume = errors.New("layer has no volume")

	// ErrMaskShape is returned when a mask cannot be matched voxel for voxel
	// against the volume whose window it restricts
	ErrMaskShape = errors.New("mask does not match volume")

	// ErrUnknownBackground is returned for backgrounds other than black and white
	ErrUnknownBackground = errors.New("unknown background")
)

// DefaultPercentiles is the window derived when none is given
var DefaultPercentiles = [2]float64{2, 98}

// Config holds the options of a layer. Nil pointers take the defaults.
type Config struct {
	// Name labels the layer in log output
	Name string

	// Volume is the displayed volume; required
	Volume VolumeRef

	// Scale multiplies every sample (default 1)
	Scale *float64

	// Index selects the frame of a 4D volume (default 0)
	Index *int

	// InterpOrder is 0, 1 or 3 (default 1)
	InterpOrder *int

	// Boundary applies to samples outside the volume (default Nearest)
	Boundary *slicer.Boundary

	// Component reduces complex volumes to real values (default Mag)
	Component *Component

	// Colormap is a colormap name; the default depends on the window
	Colormap *string

	// Clim is the color window; derived from ClimPercentiles when nil
	Clim *colormap.Window

	// ClimPercentiles are the percentiles used to derive Clim (default 2, 98)
	ClimPercentiles *[2]float64

	// Mask is an optional volume that hides voxels at or below MaskThreshold.
	// A derived Clim only uses voxels where the mask is nonzero.
	Mask VolumeRef

	// MaskThreshold applies to Mask, or to the layer's own data when no
	// mask volume is given (default 0, unset means no self threshold)
	MaskThreshold *float64

	// BoxPadding grows the mask bounding box in world units
	BoxPadding *float64

	// Alpha is an optional transparency volume, possibly complex
	Alpha VolumeRef

	// AlphaValue is a uniform opacity in [0, 1], used when Alpha is empty
	AlphaValue *float64

	// AlphaLim is the alpha window; derived from percentiles when nil
	AlphaLim *colormap.Window

	// AlphaScale multiplies alpha samples (default 1)
	AlphaScale *float64

	// Background is "black" (default) or "white"
	Background *string
}

// Ptr returns a pointer to v, for filling Config
func Ptr[T any](v T) *T {
	return &v
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// source is a volume prepared for repeated sampling at one order, with one
// field per frame built on first use.
type source struct {
	vol    *models.Volume
	order  int
	fields map[int]*slicer.Field
}

func newSource(vol *models.Volume, order int) *source {
	return &source{vol: vol, order: order, fields: make(map[int]*slicer.Field)}
}

// frame returns index when the volume has that many frames, else 0
func (s *source) frame(index int) int {
	if index < s.vol.Frames() {
		return index
	}
	return 0
}

func (s *source) sample(sl *slicer.Slicer, index int, scale float64, boundary slicer.Boundary) (*raster.Scalar, error) {
	frame := s.frame(index)
	f, ok := s.fields[frame]
	if !ok {
		var err error
		f, err = slicer.NewField(s.vol, frame, s.order)
		if err != nil {
			return nil, err
		}
		s.fields[frame] = f
	}
	return sl.SampleField(f, s.vol.Affine, slicer.SampleOptions{Scale: scale, Boundary: boundary})
}

// Layer is one volume configured for display
type Layer struct {
	name      string
	base      *source
	scale     float64
	index     int
	boundary  slicer.Boundary
	component Component
	complex   bool

	cmName string
	cm     colormap.Colormap
	clim   colormap.Window

	mask          *source
	maskThreshold float64
	selfThreshold bool

	alphaRe, alphaIm *source
	alphaValue       *float64
	alphaLim         colormap.Window
	alphaScale       float64

	background [3]float64
	box        box.Box
}

// New resolves the volumes named by cfg and derives every default
func New(cfg Config) (*Layer, error) {
	if cfg.Volume.IsZero() {
		return nil, ErrNoVolume
	}

	l := &Layer{
		name:       cfg.Name,
		scale:      valueOr(cfg.Scale, 1),
		index:      valueOr(cfg.Index, 0),
		boundary:   valueOr(cfg.Boundary, slicer.Nearest),
		component:  valueOr(cfg.Component, Mag),
		alphaScale: valueOr(cfg.AlphaScale, 1),
		alphaValue: cfg.AlphaValue,
	}
	if l.name == "" {
		l.name = cfg.Volume.String()
	}
	order := valueOr(cfg.InterpOrder, 1)
	if order != 0 && order != 1 && order != 3 {
		return nil, fmt.Errorf("%w: %d", slicer.ErrUnsupportedOrder, order)
	}

	background, err := ParseBackground(valueOr(cfg.Background, "black"))
	if err != nil {
		return nil, err
	}
	l.background = background

	raw, err := cfg.Volume.Resolve()
	if err != nil {
		return nil, err
	}
	if l.component < Mag || l.component > Phase {
		return nil, fmt.Errorf("%w: %v", ErrUnknownComponent, l.component)
	}
	l.complex = raw.IsComplex()
	vol, err := Extract(raw, l.component)
	if err != nil {
		return nil, err
	}
	vol = vol.Finite()
	if l.index < 0 || l.index >= vol.Frames() {
		return nil, fmt.Errorf("%w: %d of %d", slicer.ErrVolumeIndex, l.index, vol.Frames())
	}
	l.base = newSource(vol, order)

	if err := l.setupMask(cfg); err != nil {
		return nil, err
	}
	if err := l.setupClim(cfg); err != nil {
		return nil, err
	}
	if err := l.setupColormap(cfg); err != nil {
		return nil, err
	}
	if err := l.setupAlpha(cfg, order); err != nil {
		return nil, err
	}

	log.Debugf("layer %s: clim %v, colormap %s", l.name, l.clim, l.cmName)
	return l, nil
}

// ParseBackground maps "black" or "white" to an RGB color
func ParseBackground(name string) ([3]float64, error) {
	switch strings.ToLower(name) {
	case "", "black":
		return [3]float64{0, 0, 0}, nil
	case "white":
		return [3]float64{1, 1, 1}, nil
	}
	return [3]float64{}, fmt.Errorf("%w: %q", ErrUnknownBackground, name)
}

func (l *Layer) setupMask(cfg Config) error {
	l.maskThreshold = valueOr(cfg.MaskThreshold, 0)
	mask, err := cfg.Mask.Resolve()
	if err != nil {
		return err
	}

	vol := l.base.vol
	if mask == nil {
		l.selfThreshold = cfg.MaskThreshold != nil
		l.box, err = box.FromImage(vol.Shape, vol.Affine)
		return err
	}

	mask, err = Extract(mask, Mag)
	if err != nil {
		return err
	}
	l.mask = newSource(mask.Finite(), 0)

	l.box, err = box.FromMask(mask, valueOr(cfg.BoxPadding, 0))
	if errors.Is(err, box.ErrEmptyMask) {
		log.Warnf("layer %s: mask %s is empty, using the full volume extent", l.name, cfg.Mask)
		l.box, err = box.FromImage(vol.Shape, vol.Affine)
	}
	return err
}

func (l *Layer) setupClim(cfg Config) error {
	if cfg.Clim != nil {
		if err := cfg.Clim.Validate(); err != nil {
			return err
		}
		l.clim = *cfg.Clim
		return nil
	}

	p := valueOr(cfg.ClimPercentiles, DefaultPercentiles)
	values := l.base.vol.Frame(l.index)
	if l.mask != nil {
		mvol := l.mask.vol
		if mvol.Dims() != l.base.vol.Dims() {
			return fmt.Errorf("%w: mask %v, volume %v", ErrMaskShape, mvol.Shape, l.base.vol.Shape)
		}
		m := mvol.Frame(l.mask.frame(l.index))
		inside := make([]float64, 0, len(values))
		for i, v := range values {
			if m[i] != 0 {
				inside = append(inside, v)
			}
		}
		values = inside
	}

	if len(values) == 0 {
		log.Warnf("layer %s: mask selects no voxels, using window (0, 1)", l.name)
		l.clim = colormap.Window{0, 1}
		return nil
	}
	w, err := percentileWindow(values, p)
	if err != nil {
		return err
	}
	l.clim = w
	return nil
}

func (l *Layer) setupColormap(cfg Config) error {
	switch {
	case cfg.Colormap != nil:
		l.cmName = *cfg.Colormap
	case l.complex && l.component == Phase:
		l.cmName = "phase"
	case l.clim.Diverging():
		l.cmName = "twoway"
	default:
		l.cmName = "gray"
	}
	cm, err := colormap.Lookup(l.cmName)
	if err != nil {
		return err
	}
	l.cm = cm
	return nil
}

func (l *Layer) setupAlpha(cfg Config, order int) error {
	alpha, err := cfg.Alpha.Resolve()
	if err != nil || alpha == nil {
		return err
	}

	var re, im *models.Volume
	if alpha.IsComplex() {
		if re, err = Extract(alpha, Real); err != nil {
			return err
		}
		if im, err = Extract(alpha, Imag); err != nil {
			return err
		}
		re, im = re.Finite(), im.Finite()
		l.alphaIm = newSource(im, order)
	} else {
		re = alpha.Finite()
	}
	l.alphaRe = newSource(re, order)

	if cfg.AlphaLim != nil {
		if err := cfg.AlphaLim.Validate(); err != nil {
			return err
		}
		l.alphaLim = *cfg.AlphaLim
		return nil
	}

	frame := l.alphaRe.frame(l.index)
	mags := make([]float64, 0, len(re.Frame(frame)))
	for i, v := range re.Frame(frame) {
		if im != nil {
			mags = append(mags, math.Hypot(v, im.Frame(frame)[i]))
		} else {
			mags = append(mags, math.Abs(v))
		}
	}
	l.alphaLim, err = percentileWindow(mags, DefaultPercentiles)
	return err
}

// percentileWindow returns the p[0] and p[1] percentiles of values, widened
// to a minimum span when they coincide.
func percentileWindow(values []float64, p [2]float64) (colormap.Window, error) {
	if !(p[0] >= 0 && p[0] < p[1] && p[1] <= 100) {
		return colormap.Window{}, fmt.Errorf("%w: percentiles %v", colormap.ErrInvalidWindow, p)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	w := colormap.Window{
		stat.Quantile(p[0]/100, stat.LinInterp, sorted, nil),
		stat.Quantile(p[1]/100, stat.LinInterp, sorted, nil),
	}
	if span := minSpan(w[0]); w[1]-w[0] < span {
		log.Debugf("widening degenerate window %v", w)
		w[1] = w[0] + span
	}
	return w, nil
}

func minSpan(v float64) float64 {
	return 1e-6 * math.Max(1, math.Abs(v))
}

// Slice resamples the layer's volume on the slicer's plane
func (l *Layer) Slice(s *slicer.Slicer) (*raster.Scalar, error) {
	return l.base.sample(s, l.index, l.scale, l.boundary)
}

// Color returns the colorized slice
func (l *Layer) Color(s *slicer.Slicer) (*raster.RGB, error) {
	data, err := l.Slice(s)
	if err != nil {
		return nil, err
	}
	return colormap.ColorizeWith(data, l.cm, l.clim)
}

// Mask returns the visible pixels of the slice, or nil when the layer has
// neither a mask volume nor a threshold of its own.
func (l *Layer) Mask(s *slicer.Slicer) (*raster.Mask, error) {
	switch {
	case l.mask != nil:
		data, err := l.mask.sample(s, l.index, 1, slicer.Constant)
		if err != nil {
			return nil, err
		}
		return data.Threshold(l.maskThreshold), nil
	case l.selfThreshold:
		data, err := l.Slice(s)
		if err != nil {
			return nil, err
		}
		return data.Threshold(l.maskThreshold), nil
	default:
		return nil, nil
	}
}

// Alpha returns the opacity of each pixel in [0, 1], or nil for a layer
// without transparency. Complex alpha volumes contribute the magnitude of
// their interpolated value.
func (l *Layer) Alpha(s *slicer.Slicer) (*raster.Scalar, error) {
	if l.alphaRe == nil {
		if l.alphaValue == nil {
			return nil, nil
		}
		w, h := s.Size()
		out := raster.NewScalar(w, h)
		a := math.Max(0, math.Min(1, *l.alphaValue))
		for i := range out.Pix {
			out.Pix[i] = a
		}
		return out, nil
	}

	re, err := l.alphaRe.sample(s, l.index, 1, l.boundary)
	if err != nil {
		return nil, err
	}
	var im *raster.Scalar
	if l.alphaIm != nil {
		if im, err = l.alphaIm.sample(s, l.index, 1, l.boundary); err != nil {
			return nil, err
		}
	}

	out := raster.NewScalar(re.W, re.H)
	for i, v := range re.Pix {
		mag := math.Abs(v)
		if im != nil {
			mag = math.Hypot(v, im.Pix[i])
		}
		out.Pix[i] = colormap.ScaleClipValue(mag*l.alphaScale, l.alphaLim)
	}
	return out, nil
}

// HasAlpha reports whether the layer is blended rather than masked onto
// the layers below it.
func (l *Layer) HasAlpha() bool {
	return l.alphaRe != nil || l.alphaValue != nil
}

// SetVolume selects another frame of a 4D volume. The window stays as
// derived at construction.
func (l *Layer) SetVolume(index int) error {
	if index < 0 || index >= l.base.vol.Frames() {
		return fmt.Errorf("%w: %d of %d", slicer.ErrVolumeIndex, index, l.base.vol.Frames())
	}
	l.index = index
	return nil
}

// Name returns the layer label
func (l *Layer) Name() string { return l.name }

// Volume returns the real, finite volume the layer displays
func (l *Layer) Volume() *models.Volume { return l.base.vol }

// Index returns the selected frame
func (l *Layer) Index() int { return l.index }

// Frames returns the number of frames of the layer's volume
func (l *Layer) Frames() int { return l.base.vol.Frames() }

// Box returns the mask bounding box, or the volume extent without a mask
func (l *Layer) Box() box.Box { return l.box }

// Clim returns the color window
func (l *Layer) Clim() colormap.Window { return l.clim }

// AlphaLim returns the alpha window; zero without an alpha volume
func (l *Layer) AlphaLim() colormap.Window { return l.alphaLim }

// Colormap returns the colormap name
func (l *Layer) Colormap() string { return l.cmName }

// Background returns the color shown outside the mask
func (l *Layer) Background() [3]float64 { return l.background }
