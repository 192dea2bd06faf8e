// Command viewer renders a built-in scene progressively in a desktop window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/display"
	"github.com/df07/go-progressive-pathtracer/pkg/filter"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// viewer is the ebiten.Game consuming the session's published frames
type viewer struct {
	session    *renderer.Session
	toneMapper display.ToneMapper
	frame      *ebiten.Image
	lastGen    uint64
	done       <-chan error
	logger     *slog.Logger
}

func (v *viewer) Update() error {
	select {
	case err := <-v.done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		v.done = nil
	default:
	}
	if ebiten.IsKeyPressed(ebiten.KeyEscape) || ebiten.IsKeyPressed(ebiten.KeyQ) {
		v.session.Quit()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := v.session.Reset(); err != nil {
			v.logger.Warn("reset failed", "err", err)
		}
	}

	gen := v.session.Buffers().Generation()
	if gen == v.lastGen {
		return nil
	}
	img, ok := v.toneMapper.Snapshot(v.session.Buffers())
	if !ok {
		return nil
	}
	v.frame.WritePixels(img.Pix)
	v.lastGen = gen
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.DrawImage(v.frame, nil)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("frame %d  TPS %.0f", v.session.Frame(), ebiten.ActualTPS()))
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := v.frame.Bounds()
	return b.Dx(), b.Dy()
}

func main() {
	sceneName := flag.String("scene", "cornell", "Scene to render")
	width := flag.Int("width", 400, "Image width")
	height := flag.Int("height", 400, "Image height")
	spp := flag.Int("spp", 1, "Samples per pixel per frame")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = logical CPUs)")
	exposure := flag.Float64("exposure", 1, "Exposure applied before tonemapping")
	verbose := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	core.SetLogger(logger)

	sc, err := scene.Load(*sceneName, scene.Options{Width: *width, Height: *height, Filter: filter.New(filter.Gaussian, 1.5)})
	if err != nil {
		logger.Error("load scene", "err", err)
		os.Exit(1)
	}
	cfg := renderer.DefaultConfig(*width, *height)
	cfg.SamplesPerFrame = *spp
	cfg.NumWorkers = *workers
	session, err := renderer.NewSession(sc, cfg, logger)
	if err != nil {
		logger.Error("create session", "err", err)
		os.Exit(1)
	}
	defer session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := session.Run(ctx, 0)
		done <- err
	}()

	v := &viewer{
		session:    session,
		toneMapper: display.ToneMapper{Exposure: *exposure, Gamma: 2.2},
		frame:      ebiten.NewImage(*width, *height),
		done:       done,
		logger:     logger,
	}
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("Progressive Path Tracer - " + *sceneName)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		logger.Error("viewer", "err", err)
		session.Quit()
		cancel()
		os.Exit(1)
	}
	session.Quit()
	cancel()
}
