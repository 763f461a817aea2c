package volume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volslice/internal/models"
)

func testVolume() *models.Volume {
	vol := models.NewVolume([]int{3, 2, 2}, models.Scaling([3]float64{2, 2, 3}, [3]float64{-1, 0, 5}))
	for i := range vol.Data {
		vol.Data[i] = float64(i) * 0.5
	}
	return vol
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts SaveOptions
	}{
		{"float32", SaveOptions{}},
		{"float64 gzip", SaveOptions{DType: Float64, Compression: Gzip}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vol.yaml")
			src := testVolume()
			require.NoError(t, Save(path, src, tc.opts))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, src.Shape, got.Shape)
			assert.Equal(t, src.Affine, got.Affine)
			assert.Equal(t, src.Data, got.Data)
		})
	}
}

func TestSaveLoadComplex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cplx.yaml")
	src := &models.Volume{
		Shape:   []int{2, 1, 1, 2},
		Affine:  models.Identity(),
		Complex: []complex128{1 + 2i, -3, 0.5i, 4 - 4i},
	}
	require.NoError(t, Save(path, src, SaveOptions{Compression: Gzip}))

	got, err := Load(path)
	require.NoError(t, err)
	assert.True(t, got.IsComplex())
	assert.Equal(t, src.Complex, got.Complex)
	assert.Equal(t, 2, got.Frames())
}

func TestLoadHandWrittenHeader(t *testing.T) {
	dir := t.TempDir()
	header := "shape: [2, 1, 1]\ndtype: float64\ndata: v.raw\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v.yaml"), []byte(header), 0644))
	// 1.0 and 2.0 as little-endian float64
	raw := []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f, 0, 0, 0, 0, 0, 0, 0, 0x40}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v.raw"), raw, 0644))

	got, err := Load(filepath.Join(dir, "v.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got.Data)
	assert.Equal(t, models.Identity(), got.Affine)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("shape: [2, 1, 1]\ndtype: int8\ndata: x.raw\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.raw"), []byte{1, 2}, 0644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrFormat)

	short := filepath.Join(dir, "short.yaml")
	require.NoError(t, os.WriteFile(short, []byte("shape: [4, 4, 4]\ndata: x.raw\n"), 0644))
	_, err = Load(short)
	assert.ErrorIs(t, err, ErrFormat)

	affine := filepath.Join(dir, "affine.yaml")
	require.NoError(t, os.WriteFile(affine, []byte("shape: [1, 1, 1]\naffine: [[1, 0, 0]]\ndata: x.raw\n"), 0644))
	_, err = Load(affine)
	assert.ErrorIs(t, err, ErrFormat)

	for _, shape := range []string{"[-2, 2, 2]", "[0, 1, 1]", "[2, 2]", "[100000, 100000, 100000]"} {
		hdr := filepath.Join(dir, "shape.yaml")
		require.NoError(t, os.WriteFile(hdr, []byte("shape: "+shape+"\ndata: x.raw\n"), 0644))
		_, err = Load(hdr)
		assert.ErrorIs(t, err, ErrFormat, shape)
	}

	gz := filepath.Join(dir, "gz.yaml")
	require.NoError(t, os.WriteFile(gz, []byte("shape: [-1, 4, 4]\ndata: x.raw\ncompression: gzip\n"), 0644))
	_, err = Load(gz)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestSaveRejectsMismatchedDType(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "v.yaml"), testVolume(), SaveOptions{DType: Complex64})
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	lo, hi := Stats(testVolume())
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 5.5, hi)
}
