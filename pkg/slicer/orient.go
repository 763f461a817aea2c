package slicer

import (
	"fmt"
	"strings"
)

// Axis is a world-space axis index
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// String returns the axis letter
func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts x/y/z (any case) or 0/1/2
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "0":
		return X, nil
	case "y", "1":
		return Y, nil
	case "z", "2":
		return Z, nil
	default:
		return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", s)
	}
}

// Orientation selects which in-plane axes are drawn right and up
type Orientation int

const (
	Clinical Orientation = iota
	Preclinical
)

// String returns the orientation name
func (o Orientation) String() string {
	switch o {
	case Clinical:
		return "clinical"
	case Preclinical:
		return "preclinical"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation accepts clinical/clin and preclinical/preclin
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clinical", "clin", "":
		return Clinical, nil
	case "preclinical", "preclin":
		return Preclinical, nil
	default:
		return 0, fmt.Errorf("invalid orientation: %s (must be clinical or preclinical)", s)
	}
}

// AxisIndices returns the right and up axes for a slice perpendicular to axis
func AxisIndices(axis Axis, orient Orientation) (right, up Axis) {
	switch orient {
	case Preclinical:
		return [3]Axis{Z, Z, X}[axis], [3]Axis{Y, X, Y}[axis]
	default:
		return [3]Axis{Y, X, X}[axis], [3]Axis{Z, Z, Y}[axis]
	}
}
