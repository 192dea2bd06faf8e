package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/filter"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/df07/go-progressive-pathtracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	sceneName := flag.String("scene", "cornell", "Scene to render")
	width := flag.Int("width", 400, "Image width")
	height := flag.Int("height", 400, "Image height")
	spp := flag.Int("spp", 1, "Samples per pixel per frame")
	frames := flag.Int("frames", 0, "Stop after this many frames (0 = until quit)")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = logical CPUs)")
	verbose := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	consoleChan := make(chan server.ConsoleMessage, 100)
	logger := slog.New(server.NewConsoleHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}), consoleChan))
	core.SetLogger(logger)

	if err := serve(logger, consoleChan, *port, *sceneName, *width, *height, *spp, *frames, *workers); err != nil {
		logger.Error("web server failed", "err", err)
		os.Exit(1)
	}
}

func serve(logger *slog.Logger, consoleChan chan server.ConsoleMessage, port int, sceneName string, width, height, spp, frames, workers int) error {
	sc, err := scene.Load(sceneName, scene.Options{Width: width, Height: height, Filter: filter.New(filter.Gaussian, 1.5)})
	if err != nil {
		return err
	}
	cfg := renderer.DefaultConfig(width, height)
	cfg.SamplesPerFrame = spp
	cfg.NumWorkers = workers
	session, err := renderer.NewSession(sc, cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv := server.NewServer(session, sceneName, logger, consoleChan)
	errc := make(chan error, 2)
	go func() { errc <- srv.Start(fmt.Sprintf(":%d", port)) }()
	go func() { errc <- srv.RenderLoop(ctx, frames) }()

	logger.Info("progressive path tracer web server", "url", fmt.Sprintf("http://localhost:%d/frame.png", port))

	// rendering ending (quit, frame limit) keeps the last frame available
	// until interrupted
	var runErr error
	select {
	case runErr = <-errc:
		if runErr == nil && !session.Quitting() {
			<-ctx.Done()
		}
	case <-ctx.Done():
	}
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return runErr
}
