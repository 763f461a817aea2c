// Package config provides scene configuration loading and management for volslice.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate and wrapped by LoadConfig
var ErrInvalidConfig = errors.New("invalid config")

// Config represents a scene: which volumes to show, how to slice them and
// where to write the images.
type Config struct {
	// Slicing parameters
	Slicing SlicingConfig `yaml:"slicing"`

	// Layers are composited in order, the first one is the base
	Layers []LayerConfig `yaml:"layers"`

	// Output parameters
	Output OutputConfig `yaml:"output"`

	// Logging parameters
	Logging LoggingConfig `yaml:"logging"`
}

// SlicingConfig places the slicing planes
type SlicingConfig struct {
	// Axis is x, y or z, perpendicular to the slices
	Axis string `yaml:"axis"`

	// Count is the number of slices in a stack
	Count int `yaml:"count"`

	// Limits are the first and last slice as fractions of the base box
	Limits [2]float64 `yaml:"limits"`

	// ThreeAxis renders one slice per axis through Point or the box center
	ThreeAxis bool `yaml:"threeAxis"`

	// Timeseries renders the same plane for every frame of the base volume
	Timeseries bool `yaml:"timeseries"`

	// Point is the world-space point for ThreeAxis and Timeseries slices
	Point *[3]float64 `yaml:"point,omitempty"`

	// Cursor picks the point when Point is unset: center of the base box
	// or com, the brightest plane along each axis of the base volume
	Cursor string `yaml:"cursor,omitempty"`

	// Samples is the number of samples along each slice's right axis
	Samples int `yaml:"samples"`

	// Orientation is clinical or preclinical
	Orientation string `yaml:"orientation"`

	// CacheSize is the number of voxel-coordinate sets kept per slicer
	CacheSize int `yaml:"cacheSize"`
}

// LayerConfig describes one layer. Unset fields take the layer defaults.
type LayerConfig struct {
	Name            string    `yaml:"name,omitempty"`
	Volume          string    `yaml:"volume"`
	Scale           *float64  `yaml:"scale,omitempty"`
	Index           *int      `yaml:"index,omitempty"`
	InterpOrder     *int      `yaml:"interpOrder,omitempty"`
	Boundary        string    `yaml:"boundary,omitempty"`
	Component       string    `yaml:"component,omitempty"`
	Colormap        string    `yaml:"colormap,omitempty"`
	Clim            []float64 `yaml:"clim,omitempty"`
	ClimPercentiles []float64 `yaml:"climPercentiles,omitempty"`
	Mask            string    `yaml:"mask,omitempty"`
	MaskThreshold   *float64  `yaml:"maskThreshold,omitempty"`
	BoxPadding      *float64  `yaml:"boxPadding,omitempty"`
	Alpha           string    `yaml:"alpha,omitempty"`
	AlphaValue      *float64  `yaml:"alphaValue,omitempty"`
	AlphaLim        []float64 `yaml:"alphaLim,omitempty"`
	AlphaScale      *float64  `yaml:"alphaScale,omitempty"`
	Background      string    `yaml:"background,omitempty"`
}

// OutputConfig controls the written images
type OutputConfig struct {
	// Dir is the directory receiving the PNG files
	Dir string `yaml:"dir"`

	// Prefix starts every file name
	Prefix string `yaml:"prefix"`

	// Upsample enlarges each slice by this factor before writing
	Upsample int `yaml:"upsample"`

	// Filter is the resampling filter used for upsampling
	Filter string `yaml:"filter"`

	// Origin is lower (world up is image up) or upper. Empty follows the
	// orientation: upper for preclinical, lower otherwise.
	Origin string `yaml:"origin,omitempty"`

	// Checkerboard, when positive, interleaves the first two layers in
	// squares of this many samples instead of blending the stack
	Checkerboard int `yaml:"checkerboard,omitempty"`

	// Contours are levels of the last layer's alpha data drawn as lines,
	// in the units of its alpha window
	Contours []float64 `yaml:"contours,omitempty"`

	// ContourColor is a hex color such as #ffffff
	ContourColor string `yaml:"contourColor"`

	// LineWidth is the contour and crosshair width in output pixels
	LineWidth float64 `yaml:"lineWidth"`

	// Crosshair marks Point on three-axis and timeseries slices
	Crosshair bool `yaml:"crosshair"`
}

// LoggingConfig sets the log level of every named logger
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Slicing.Axis = "z"
	cfg.Slicing.Count = 9
	cfg.Slicing.Limits = [2]float64{0.1, 0.9}
	cfg.Slicing.Samples = 256
	cfg.Slicing.Orientation = "clinical"
	cfg.Slicing.CacheSize = 4

	cfg.Output.Dir = "slices"
	cfg.Output.Prefix = "slice"
	cfg.Output.Upsample = 1
	cfg.Output.Filter = "nearest"
	cfg.Output.ContourColor = "#ffffff"
	cfg.Output.LineWidth = 1

	cfg.Logging.Level = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration.
// Relative volume paths are resolved against the file's directory.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.resolvePaths(filepath.Dir(configPath))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values left by a partial file
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Slicing.Axis == "" {
		c.Slicing.Axis = def.Slicing.Axis
	}
	if c.Slicing.Count == 0 {
		c.Slicing.Count = def.Slicing.Count
	}
	if c.Slicing.Samples == 0 {
		c.Slicing.Samples = def.Slicing.Samples
	}
	if c.Slicing.Orientation == "" {
		c.Slicing.Orientation = def.Slicing.Orientation
	}
	if c.Slicing.CacheSize == 0 {
		c.Slicing.CacheSize = def.Slicing.CacheSize
	}
	if c.Output.Dir == "" {
		c.Output.Dir = def.Output.Dir
	}
	if c.Output.Prefix == "" {
		c.Output.Prefix = def.Output.Prefix
	}
	if c.Output.Upsample == 0 {
		c.Output.Upsample = def.Output.Upsample
	}
	if c.Output.Filter == "" {
		c.Output.Filter = def.Output.Filter
	}
	if c.Output.ContourColor == "" {
		c.Output.ContourColor = def.Output.ContourColor
	}
	if c.Output.LineWidth == 0 {
		c.Output.LineWidth = def.Output.LineWidth
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

func (c *Config) resolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range c.Layers {
		c.Layers[i].Volume = resolve(c.Layers[i].Volume)
		c.Layers[i].Mask = resolve(c.Layers[i].Mask)
		c.Layers[i].Alpha = resolve(c.Layers[i].Alpha)
	}
}

// Validate checks the values that can be checked without loading volumes
func (c *Config) Validate() error {
	s := c.Slicing
	switch strings.ToLower(s.Axis) {
	case "x", "y", "z":
	default:
		return fmt.Errorf("%w: axis %q", ErrInvalidConfig, s.Axis)
	}
	switch strings.ToLower(s.Orientation) {
	case "clinical", "clin", "preclinical", "preclin":
	default:
		return fmt.Errorf("%w: orientation %q", ErrInvalidConfig, s.Orientation)
	}
	if s.Count < 1 {
		return fmt.Errorf("%w: slice count %d", ErrInvalidConfig, s.Count)
	}
	if s.Samples < 1 {
		return fmt.Errorf("%w: samples %d", ErrInvalidConfig, s.Samples)
	}
	if s.Limits[0] < 0 || s.Limits[1] > 1 || s.Limits[0] > s.Limits[1] {
		return fmt.Errorf("%w: slice limits %v", ErrInvalidConfig, s.Limits)
	}
	switch strings.ToLower(s.Cursor) {
	case "", "center", "com":
	default:
		return fmt.Errorf("%w: cursor %q", ErrInvalidConfig, s.Cursor)
	}
	if s.ThreeAxis && s.Timeseries {
		return fmt.Errorf("%w: threeAxis and timeseries are exclusive", ErrInvalidConfig)
	}

	if len(c.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrInvalidConfig)
	}
	for i, l := range c.Layers {
		if l.Volume == "" {
			return fmt.Errorf("%w: layer %d has no volume", ErrInvalidConfig, i)
		}
		for name, v := range map[string][]float64{"clim": l.Clim, "climPercentiles": l.ClimPercentiles, "alphaLim": l.AlphaLim} {
			if len(v) != 0 && len(v) != 2 {
				return fmt.Errorf("%w: layer %d %s needs two values, got %d", ErrInvalidConfig, i, name, len(v))
			}
		}
	}

	o := c.Output
	if o.Upsample < 1 {
		return fmt.Errorf("%w: upsample %d", ErrInvalidConfig, o.Upsample)
	}
	switch strings.ToLower(o.Origin) {
	case "", "lower", "upper":
	default:
		return fmt.Errorf("%w: origin %q", ErrInvalidConfig, o.Origin)
	}
	if o.LineWidth < 0 {
		return fmt.Errorf("%w: line width %v", ErrInvalidConfig, o.LineWidth)
	}
	if o.Checkerboard < 0 {
		return fmt.Errorf("%w: checkerboard %d", ErrInvalidConfig, o.Checkerboard)
	}
	if o.Checkerboard > 0 && len(c.Layers) < 2 {
		return fmt.Errorf("%w: checkerboard needs two layers", ErrInvalidConfig)
	}
	return nil
}

// OutputOrigin returns the configured origin, or the one that suits the
// slicing orientation when none is set
func (c *Config) OutputOrigin() string {
	if c.Output.Origin != "" {
		return c.Output.Origin
	}
	switch strings.ToLower(c.Slicing.Orientation) {
	case "preclinical", "preclin":
		return "upper"
	}
	return "lower"
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path.
// The written scene names one placeholder layer to edit.
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	cfg.Layers = []LayerConfig{{Name: "base", Volume: "base.yaml"}}
	return SaveConfig(cfg, configPath)
}
