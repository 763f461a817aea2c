package colormap

import (
	"math"
	"strings"
	"testing"

	ccmap "cogentcore.org/core/colors/colormap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volslice/pkg/raster"
)

func TestLibraryMapsAdapt(t *testing.T) {
	t.Parallel()

	for name, m := range ccmap.AvailableMaps {
		switch key := strings.ToLower(name); {
		case aliases[key] != "", key == "gray", key == "phase", key == "twoway":
			continue
		}
		cm, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		for _, v := range []float64{0, 0.5, 1} {
			c := m.Map(float32(v))
			want := [3]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
			if got := cm.RGB(v); got != want {
				t.Errorf("%s at %v: got %v, want %v", name, v, got, want)
			}
		}
	}
}

func TestGrayIsIdentity(t *testing.T) {
	for _, v := range []float64{0, 0.25, 0.5, 1} {
		rgb := Gray.RGB(v)
		assert.InDelta(t, v, rgb[0], 1e-12)
		assert.Equal(t, rgb[0], rgb[1])
		assert.Equal(t, rgb[1], rgb[2])
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"gray", "GREY", "gist_gray", "twoway", "phase", "Viridis", "inferno"} {
		_, err := Lookup(name)
		assert.NoError(t, err, name)
	}
	_, err := Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownColormap)
	_, err = Lookup("nope_r")
	assert.ErrorIs(t, err, ErrUnknownColormap)
	assert.Contains(t, Names(), "viridis")
	assert.Contains(t, Names(), "twoway")
}

func TestReversedSuffix(t *testing.T) {
	cm, err := Lookup("gray_r")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1, 1, 1}, cm.RGB(0))
	assert.Equal(t, [3]float64{0, 0, 0}, cm.RGB(1))

	v, err := Lookup("viridis")
	require.NoError(t, err)
	vr, err := Lookup("VIRIDIS_R")
	require.NoError(t, err)
	assert.Equal(t, v.RGB(0.2), vr.RGB(0.8))
	assert.Equal(t, Gray, Reverse(Reverse(Gray)))
}

func TestTwoWayIsDarkInTheMiddle(t *testing.T) {
	tw, err := TwoWay()
	require.NoError(t, err)

	mid := tw.RGB(0.5)
	low := tw.RGB(0)
	high := tw.RGB(1)
	lum := func(c [3]float64) float64 { return c[0] + c[1] + c[2] }
	assert.Less(t, lum(mid), 0.1)
	assert.Greater(t, lum(low), 2.9)
	assert.Greater(t, lum(high), 2.0)
	// the negative side is blue, the positive side warm
	q1, q3 := tw.RGB(0.25), tw.RGB(0.75)
	assert.Greater(t, q1[2], q1[0])
	assert.Greater(t, q3[0], q3[2])
	assert.Greater(t, lum(q3), lum(mid))
}

func TestPhaseIsCyclic(t *testing.T) {
	a, b := Phase.RGB(0), Phase.RGB(1)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, a[i], b[i], 1e-12)
	}
}

func TestWindowValidate(t *testing.T) {
	assert.NoError(t, Window{0, 1}.Validate())
	assert.ErrorIs(t, Window{1, 1}.Validate(), ErrInvalidWindow)
	assert.ErrorIs(t, Window{2, 1}.Validate(), ErrInvalidWindow)
	assert.ErrorIs(t, Window{0, math.Inf(1)}.Validate(), ErrInvalidWindow)
}

func TestNormalize(t *testing.T) {
	lin := Window{10, 20}
	assert.Equal(t, 0.0, lin.Normalize(5))
	assert.Equal(t, 0.5, lin.Normalize(15))
	assert.Equal(t, 1.0, lin.Normalize(25))

	div := Window{-2, 8}
	assert.True(t, div.Diverging())
	assert.Equal(t, 0.0, div.Normalize(-2))
	assert.Equal(t, 0.25, div.Normalize(-1))
	assert.Equal(t, 0.5, div.Normalize(0))
	assert.Equal(t, 0.75, div.Normalize(4))
	assert.Equal(t, 1.0, div.Normalize(8))

	assert.True(t, math.IsNaN(lin.Normalize(math.NaN())))
}

func TestColorizeFlatGray(t *testing.T) {
	data := &raster.Scalar{W: 4, H: 4, Pix: make([]float64, 16)}
	for i := range data.Pix {
		data.Pix[i] = 1
	}
	rgb, err := Colorize(data, "gray", Window{0, 1})
	require.NoError(t, err)

	want := Gray.RGB(1)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, want, rgb.At(x, y))
		}
	}
}

func TestColorizeErrors(t *testing.T) {
	data := raster.NewScalar(2, 2)
	_, err := Colorize(data, "gray", Window{3, 3})
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, err = Colorize(data, "nope", Window{0, 1})
	assert.ErrorIs(t, err, ErrUnknownColormap)
}

func TestColorizeNaNIsBlack(t *testing.T) {
	data := &raster.Scalar{W: 2, H: 1, Pix: []float64{math.NaN(), 1}}
	rgb, err := Colorize(data, "gray", Window{0, 1})
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0, 0, 0}, rgb.At(0, 0))
	assert.Equal(t, [3]float64{1, 1, 1}, rgb.At(1, 0))
}

func TestScaleClip(t *testing.T) {
	data := &raster.Scalar{W: 4, H: 1, Pix: []float64{-1, 0.5, 1, 3}}
	out, err := ScaleClip(data, Window{0, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 1}, out.Pix)

	_, err = ScaleClip(data, Window{1, 1})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
