// Package volume reads and writes volumes stored as a small YAML header next
// to a raw little-endian data file, optionally gzip-compressed.
//
// A header looks like:
//
//	shape: [64, 64, 32]
//	affine:
//	  - [2, 0, 0, -64]
//	  - [0, 2, 0, -64]
//	  - [0, 0, 2, -32]
//	  - [0, 0, 0, 1]
//	dtype: float32
//	data: t1.raw.gz
//	compression: gzip
package volume

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"volslice/internal/models"
)

// Supported sample types
const (
	Float32   = "float32"
	Float64   = "float64"
	Complex64 = "complex64"
)

// Supported compression modes
const (
	None = "none"
	Gzip = "gzip"
)

// ErrFormat is returned for malformed headers or data files
var ErrFormat = errors.New("invalid volume file")

// maxVoxels bounds the shape a header may declare
const maxVoxels = 1 << 31

// Header is the on-disk description of a volume
type Header struct {
	Shape       []int       `yaml:"shape"`
	Affine      [][]float64 `yaml:"affine"`
	DType       string      `yaml:"dtype"`
	Data        string      `yaml:"data"`
	Compression string      `yaml:"compression,omitempty"`
}

// SaveOptions controls how Save encodes the data file
type SaveOptions struct {
	// DType is Float32 (default), Float64 or Complex64
	DType string

	// Compression is None (default) or Gzip
	Compression string
}

// Load reads the header at path and the data file it names
func Load(path string) (*models.Volume, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading volume header: %w", err)
	}

	var h Header
	if err := yaml.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("%w: error parsing header %s: %v", ErrFormat, path, err)
	}

	affine, err := h.affine()
	if err != nil {
		return nil, err
	}
	n, err := h.voxels()
	if err != nil {
		return nil, err
	}
	size, err := sampleSize(h.DType)
	if err != nil {
		return nil, err
	}

	dataPath := h.Data
	if !filepath.IsAbs(dataPath) {
		dataPath = filepath.Join(filepath.Dir(path), dataPath)
	}
	f, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("error opening volume data: %w", err)
	}
	defer f.Close()
	if h.Compression == "" || h.Compression == None {
		if info, err := f.Stat(); err == nil && info.Size() < int64(n)*int64(size) {
			return nil, fmt.Errorf("%w: %s holds %d bytes, shape %v needs %d",
				ErrFormat, dataPath, info.Size(), h.Shape, int64(n)*int64(size))
		}
	}

	var r io.Reader = bufio.NewReader(f)
	switch h.Compression {
	case "", None:
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFormat, dataPath, err)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, fmt.Errorf("%w: unknown compression %q", ErrFormat, h.Compression)
	}

	vol := &models.Volume{Shape: append([]int(nil), h.Shape...), Affine: affine}

	switch h.DType {
	case Float32, "":
		buf := make([]float32, n)
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrFormat, dataPath, err)
		}
		vol.Data = make([]float64, n)
		for i, v := range buf {
			vol.Data[i] = float64(v)
		}
	case Float64:
		vol.Data = make([]float64, n)
		if err := binary.Read(r, binary.LittleEndian, vol.Data); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrFormat, dataPath, err)
		}
	case Complex64:
		buf := make([]float32, 2*n)
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrFormat, dataPath, err)
		}
		vol.Complex = make([]complex128, n)
		for i := range vol.Complex {
			vol.Complex[i] = complex(float64(buf[2*i]), float64(buf[2*i+1]))
		}
	default:
		return nil, fmt.Errorf("%w: unknown dtype %q", ErrFormat, h.DType)
	}

	if err := vol.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return vol, nil
}

// voxels checks the declared shape and returns its voxel count
func (h Header) voxels() (int, error) {
	if len(h.Shape) != 3 && len(h.Shape) != 4 {
		return 0, fmt.Errorf("%w: shape %v must have 3 or 4 dimensions", ErrFormat, h.Shape)
	}
	n := 1
	for _, s := range h.Shape {
		if s < 1 || n > maxVoxels/s {
			return 0, fmt.Errorf("%w: invalid shape %v", ErrFormat, h.Shape)
		}
		n *= s
	}
	return n, nil
}

// sampleSize returns the bytes per voxel of dtype
func sampleSize(dtype string) (int, error) {
	switch dtype {
	case Float32, "":
		return 4, nil
	case Float64, Complex64:
		return 8, nil
	}
	return 0, fmt.Errorf("%w: unknown dtype %q", ErrFormat, dtype)
}

func (h Header) affine() (models.Affine, error) {
	if len(h.Affine) == 0 {
		return models.Identity(), nil
	}
	if len(h.Affine) != 4 {
		return models.Affine{}, fmt.Errorf("%w: affine needs 4 rows, got %d", ErrFormat, len(h.Affine))
	}
	var a models.Affine
	for r, row := range h.Affine {
		if len(row) != 4 {
			return models.Affine{}, fmt.Errorf("%w: affine row %d needs 4 values, got %d", ErrFormat, r, len(row))
		}
		copy(a[r][:], row)
	}
	return a, nil
}

// Save writes vol as a header at path plus a data file beside it
func Save(path string, vol *models.Volume, opts SaveOptions) error {
	if err := vol.Validate(); err != nil {
		return err
	}

	dtype := opts.DType
	if dtype == "" {
		dtype = Float32
		if vol.IsComplex() {
			dtype = Complex64
		}
	}
	if vol.IsComplex() != (dtype == Complex64) {
		return fmt.Errorf("dtype %s does not match volume data", dtype)
	}
	compression := opts.Compression
	if compression == "" {
		compression = None
	}

	dataName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".raw"
	if compression == Gzip {
		dataName += ".gz"
	}

	h := Header{
		Shape:       vol.Shape,
		DType:       dtype,
		Data:        dataName,
		Compression: compression,
	}
	for r := 0; r < 4; r++ {
		h.Affine = append(h.Affine, append([]float64(nil), vol.Affine[r][:]...))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating volume directory: %w", err)
	}
	if err := writeData(filepath.Join(filepath.Dir(path), dataName), vol, dtype, compression); err != nil {
		return err
	}

	raw, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("error marshaling volume header: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("error writing volume header: %w", err)
	}
	return nil
}

func writeData(path string, vol *models.Volume, dtype, compression string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating volume data: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var zw *gzip.Writer
	switch compression {
	case None:
	case Gzip:
		zw = gzip.NewWriter(bw)
		w = zw
	default:
		return fmt.Errorf("unknown compression %q", compression)
	}

	switch dtype {
	case Float32:
		buf := make([]float32, len(vol.Data))
		for i, v := range vol.Data {
			buf[i] = float32(v)
		}
		err = binary.Write(w, binary.LittleEndian, buf)
	case Float64:
		err = binary.Write(w, binary.LittleEndian, vol.Data)
	case Complex64:
		buf := make([]float32, 2*len(vol.Complex))
		for i, c := range vol.Complex {
			buf[2*i] = float32(real(c))
			buf[2*i+1] = float32(imag(c))
		}
		err = binary.Write(w, binary.LittleEndian, buf)
	default:
		return fmt.Errorf("unknown dtype %q", dtype)
	}
	if err != nil {
		return fmt.Errorf("error writing volume data: %w", err)
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("error finishing compressed data: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("error flushing volume data: %w", err)
	}
	return nil
}

// Stats summarizes a real volume for logging
func Stats(vol *models.Volume) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vol.Data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
