package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/display"
	"github.com/df07/go-progressive-pathtracer/pkg/filter"
	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// options holds the parsed command line
type options struct {
	scene         string
	width, height int
	frames        int
	spp           int
	maxDepth      int
	filter        string
	filterWidth   float64
	exposure      float64
	out           string
	workers       int
	verbose       bool
	groundTexture string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.scene, "scene", "cornell", "Scene: "+strings.Join(scene.Names(), ", "))
	fs.IntVar(&o.width, "width", 400, "Image width")
	fs.IntVar(&o.height, "height", 400, "Image height")
	fs.IntVar(&o.frames, "frames", 16, "Frames to accumulate")
	fs.IntVar(&o.spp, "spp", 4, "Samples per pixel per frame")
	fs.IntVar(&o.maxDepth, "max-depth", 0, "Maximum bounces (0 = default)")
	fs.StringVar(&o.filter, "filter", "gaussian", "Reconstruction filter: box, tent, gaussian, point")
	fs.Float64Var(&o.filterWidth, "filter-width", 1.5, "Filter support in pixels")
	fs.Float64Var(&o.exposure, "exposure", 1, "Exposure applied before tonemapping")
	fs.StringVar(&o.out, "out", "", "Output file (.png, .tiff or .bmp); default output/<scene>/render_<timestamp>.png")
	fs.IntVar(&o.workers, "workers", 0, "Worker goroutines (0 = logical CPUs)")
	fs.BoolVar(&o.verbose, "verbose", false, "Log per-frame and per-sample details")
	fs.StringVar(&o.groundTexture, "ground-texture", "", "Image used as ground texture in scenes that have one")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.width <= 0 || o.height <= 0 || o.frames <= 0 || o.spp <= 0 {
		return o, fmt.Errorf("width, height, frames and spp must be positive")
	}
	return o, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// encodeImage writes img in the format named by the file extension
func encodeImage(w io.Writer, path string, img image.Image) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, o.verbose)
	core.SetLogger(logger)

	kind, err := filter.ParseKind(o.filter)
	if err != nil {
		return err
	}
	sceneOpts := scene.Options{Width: o.width, Height: o.height, Filter: filter.New(kind, o.filterWidth)}
	if o.groundTexture != "" {
		tex, err := loaders.LoadImageTexture(o.groundTexture)
		if err != nil {
			return fmt.Errorf("ground texture: %w", err)
		}
		sceneOpts.GroundTexture = tex
	}

	sc, err := scene.Load(o.scene, sceneOpts)
	if err != nil {
		return err
	}
	stats := sc.BVH().Stats()
	logger.Info("scene loaded", "scene", o.scene, "primitives", stats.Primitives,
		"bvh_nodes", stats.TotalNodes, "bvh_depth", stats.MaxDepth, "lights", len(sc.Lights))

	cfg := renderer.DefaultConfig(o.width, o.height)
	cfg.SamplesPerFrame = o.spp
	cfg.NumWorkers = o.workers
	if o.maxDepth > 0 {
		cfg.Integrator.MaxDepth = o.maxDepth
	}
	session, err := renderer.NewSession(sc, cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	start := time.Now()
	last, err := session.Run(ctx, o.frames)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("render finished", "elapsed", time.Since(start).Round(time.Millisecond), "last", last.String())

	out := o.out
	if out == "" {
		out = filepath.Join("output", o.scene, fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	img, ok := display.ToneMapper{Exposure: o.exposure, Gamma: 2.2}.Snapshot(session.Buffers())
	if !ok {
		return fmt.Errorf("published frame unavailable")
	}
	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := encodeImage(file, out, img); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	logger.Info("render saved", "file", out)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
