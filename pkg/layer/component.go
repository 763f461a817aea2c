package layer

import (
	"errors"
	"fmt"
	"math/cmplx"
	"strings"

	"volslice/internal/models"
)

// ErrUnknownComponent is returned for component names other than
// real, imag, mag and phase.
var ErrUnknownComponent = errors.New("unknown component")

// Component selects which real quantity is displayed for complex data
type Component int

const (
	Mag Component = iota
	Real
	Imag
	Phase
)

func (c Component) String() string {
	switch c {
	case Mag:
		return "mag"
	case Real:
		return "real"
	case Imag:
		return "imag"
	case Phase:
		return "phase"
	default:
		return fmt.Sprintf("Component(%d)", int(c))
	}
}

// ParseComponent parses a component name; empty means Mag
func ParseComponent(s string) (Component, error) {
	switch strings.ToLower(s) {
	case "", "mag", "magnitude", "abs":
		return Mag, nil
	case "real", "re":
		return Real, nil
	case "imag", "im":
		return Imag, nil
	case "phase", "angle", "arg":
		return Phase, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownComponent, s)
}

func (c Component) apply(z complex128) (float64, error) {
	switch c {
	case Mag:
		return cmplx.Abs(z), nil
	case Real:
		return real(z), nil
	case Imag:
		return imag(z), nil
	case Phase:
		return cmplx.Phase(z), nil
	}
	return 0, fmt.Errorf("%w: %v", ErrUnknownComponent, c)
}

// Extract reduces a complex volume to one real component. Real volumes are
// returned unchanged.
func Extract(vol *models.Volume, c Component) (*models.Volume, error) {
	if !vol.IsComplex() {
		return vol, nil
	}
	out := &models.Volume{
		Shape:  append([]int(nil), vol.Shape...),
		Affine: vol.Affine,
		Data:   make([]float64, len(vol.Complex)),
	}
	for i, z := range vol.Complex {
		v, err := c.apply(z)
		if err != nil {
			return nil, err
		}
		out.Data[i] = v
	}
	return out, nil
}
