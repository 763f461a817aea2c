package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"volslice/pkg/config"
	"volslice/pkg/layer"
	"volslice/pkg/render"
	"volslice/pkg/slicer"
)

var log = config.NamedLogger("volslice")

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "volslice.yaml", "Scene configuration file")
	outputDir := flag.String("output", "", "Directory for the PNG slices (overrides output.dir)")
	axis := flag.String("axis", "", "Slice axis x, y or z (overrides slicing.axis)")
	samples := flag.Int("samples", 0, "Samples across each slice (overrides slicing.samples)")
	threeAxis := flag.Bool("three-axis", false, "Render one slice per axis through the cursor point")
	writeConfig := flag.String("write-config", "", "Write a default scene file to this path and exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default scene written to %s\n", *writeConfig)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *axis != "" {
		cfg.Slicing.Axis = *axis
	}
	if *samples > 0 {
		cfg.Slicing.Samples = *samples
	}
	if *threeAxis {
		cfg.Slicing.ThreeAxis = true
		cfg.Slicing.Timeseries = false
	}
	if err := cfg.Validate(); err != nil {
		flag.Usage()
		log.Fatalf("Invalid scene %s: %v", *configPath, err)
	}
	if err := config.SetLogLevel(cfg.Logging.Level); err != nil {
		log.Fatalf("Invalid scene %s: %v", *configPath, err)
	}

	fmt.Println("================================")
	fmt.Println("VOLSLICE: LAYERED VOLUME SLICING")
	fmt.Println("================================")

	startTime := time.Now()
	n, err := run(cfg)
	if err != nil {
		log.Fatalf("Slicing failed: %v", err)
	}
	fmt.Printf("\nWrote %d slice(s) to %s in %.2f seconds\n", n, cfg.Output.Dir, time.Since(startTime).Seconds())
}

// run renders every planned slice of the scene and returns how many were written
func run(cfg *config.Config) (int, error) {
	origin, err := render.ParseOrigin(cfg.OutputOrigin())
	if err != nil {
		return 0, err
	}
	filter, err := render.ParseFilter(cfg.Output.Filter)
	if err != nil {
		return 0, err
	}

	layers, err := buildLayers(cfg)
	if err != nil {
		return 0, err
	}
	base := layers[0]
	log.Infof("Base box: %v", base.Box())

	point := cursorPoint(cfg.Slicing, base)
	label, planes, err := planPlanes(cfg.Slicing, base.Box(), point, base.Frames())
	if err != nil {
		return 0, err
	}
	if cfg.Slicing.ThreeAxis || cfg.Slicing.Timeseries {
		v, err := slicer.SamplePoint(base.Volume(), point, 1)
		if err != nil {
			return 0, err
		}
		log.Infof("Value at %v: %.4g", point, v)
	}

	opts := render.Options{Origin: origin, Upsample: cfg.Output.Upsample, Filter: filter}
	top := layers[len(layers)-1]
	canvases := make([]*render.Canvas, 0, len(planes))
	for i, p := range planes {
		if p.frame >= 0 {
			if err := setFrame(layers, p.frame); err != nil {
				return 0, err
			}
		}

		rgb, err := compose(layers, p.slicer, cfg.Output.Checkerboard)
		if err != nil {
			return 0, fmt.Errorf("slice %d: %w", i, err)
		}
		c := render.NewCanvas(rgb, opts)

		if len(cfg.Output.Contours) > 0 && len(layers) > 1 && top.HasAlpha() {
			alpha, err := top.Alpha(p.slicer)
			if err != nil {
				return 0, fmt.Errorf("slice %d: %w", i, err)
			}
			levels := contourLevels(cfg.Output.Contours, top.AlphaLim(), alpha)
			segs := c.DrawContours(alpha, levels, cfg.Output.ContourColor, cfg.Output.LineWidth)
			log.Debugf("slice %d: %d contour segments at %v", i, segs, levels)
		}
		if cfg.Output.Crosshair && p.cursor != nil {
			x, y := render.WorldToPixel(p.slicer, *p.cursor)
			c.DrawCrosshair(x, y, cfg.Output.ContourColor, cfg.Output.LineWidth)
		}

		w, h := p.slicer.Size()
		log.Debugf("slice %d: %dx%d, %s axis, extent %v", i, w, h, p.slicer.Axis(), p.slicer.Extent)
		canvases = append(canvases, c)
	}

	paths, err := render.SaveSequence(cfg.Output.Dir, cfg.Output.Prefix, label, canvases)
	if err != nil {
		return len(paths), err
	}
	for _, path := range paths {
		log.Infof("Saved %s", path)
	}
	return len(paths), nil
}

// setFrame selects frame t of every layer that has one
func setFrame(layers []*layer.Layer, t int) error {
	for _, l := range layers {
		if t >= l.Frames() {
			continue
		}
		if err := l.SetVolume(t); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Slices a stack of volumes described by a YAML scene and writes PNG images.")
		flag.PrintDefaults()
	}
}
