// Package renderer drives progressive rendering: it splits each frame into
// tiles, renders them on a worker pool and publishes the accumulated result.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/framebuffer"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

var (
	// ErrFrameInFlight is returned by TryReset while a frame is rendering
	ErrFrameInFlight = errors.New("renderer: frame in flight")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("renderer: session closed")
	// ErrSizeMismatch is returned for a scene whose camera was built for another image size
	ErrSizeMismatch = errors.New("renderer: scene image size mismatch")
)

// Config contains configuration for progressive rendering
type Config struct {
	Width, Height   int
	SamplesPerFrame int // Samples per pixel added by each frame
	NumWorkers      int // Number of parallel workers (0 = logical CPU count)
	Integrator      integrator.Config
}

// DefaultConfig returns sensible default values for the given image size
func DefaultConfig(width, height int) Config {
	return Config{
		Width:           width,
		Height:          height,
		SamplesPerFrame: 1,
		NumWorkers:      0,
		Integrator:      integrator.DefaultConfig(),
	}
}

// Session owns everything a render needs across frames: the scene, the
// double-buffered framebuffer, the frame counter and the quit flag.
type Session struct {
	config   Config
	tiles    []Tile
	pool     *WorkerPool
	buffers  *framebuffer.DoubleBuffer
	logger   *slog.Logger
	renderer *TileRenderer
	scene    atomic.Pointer[scene.Scene]

	frame atomic.Uint64
	quit  atomic.Bool

	// held for a whole frame and by the stop-the-world operations
	mu      sync.Mutex
	started bool
	closed  bool
}

// NewSession creates a render session over a built scene. A nil logger uses
// the package-level logger from core.
func NewSession(sc *scene.Scene, config Config, logger *slog.Logger) (*Session, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("renderer: invalid image size %dx%d", config.Width, config.Height)
	}
	if logger == nil {
		logger = core.Logger()
	}
	s := &Session{
		config:  config,
		tiles:   NewTileGrid(config.Width, config.Height, TileSize),
		buffers: framebuffer.NewDoubleBuffer(config.Width, config.Height),
		logger:  logger,
	}
	s.pool = NewWorkerPool(config.NumWorkers, len(s.tiles))
	if err := s.setScene(sc); err != nil {
		return nil, err
	}
	return s, nil
}

// sizedCamera is implemented by cameras that know the image size they were built for
type sizedCamera interface {
	Config() scene.CameraConfig
}

func (s *Session) setScene(sc *scene.Scene) error {
	if !sc.Built() {
		return scene.ErrNotBuilt
	}
	if cam, ok := sc.Camera.(sizedCamera); ok {
		if c := cam.Config(); c.Width != s.config.Width || c.Height != s.config.Height {
			return fmt.Errorf("%w: camera %dx%d, session %dx%d",
				ErrSizeMismatch, c.Width, c.Height, s.config.Width, s.config.Height)
		}
	}
	s.scene.Store(sc)
	s.renderer = NewTileRenderer(sc.Camera, integrator.NewPathTracer(sc, s.config.Integrator), s.config.SamplesPerFrame)
	return nil
}

// Buffers returns the framebuffer pair consumers read from
func (s *Session) Buffers() *framebuffer.DoubleBuffer { return s.buffers }

// Config returns the session configuration
func (s *Session) Config() Config { return s.config }

// Frame returns the number of frames completed
func (s *Session) Frame() uint64 { return s.frame.Load() }

// NumWorkers returns the size of the worker pool
func (s *Session) NumWorkers() int { return s.pool.NumWorkers() }

// Scene returns the scene currently rendered
func (s *Session) Scene() *scene.Scene { return s.scene.Load() }

// RenderFrame renders one frame: every tile adds SamplesPerFrame samples per
// pixel to the working buffer, which is then published to the consumer.
// It waits for a Reset or ReloadScene in progress.
func (s *Session) RenderFrame() (FrameStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return FrameStats{}, ErrClosed
	}
	if !s.started {
		s.pool.Start()
		s.started = true
	}

	start := time.Now()
	frame := s.frame.Load()
	work := s.buffers.Work()
	for _, tile := range s.tiles {
		s.pool.SubmitTask(TileTask{Tile: tile, Frame: frame, Renderer: s.renderer, Target: work})
	}

	stats := FrameStats{Frame: frame, Tiles: len(s.tiles)}
	for range s.tiles {
		result, ok := s.pool.GetResult()
		if !ok {
			return FrameStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		stats.add(result.Stats)
	}

	stats.Published = s.buffers.Publish()
	stats.Generation = s.buffers.Generation()
	stats.Duration = time.Since(start)
	s.frame.Add(1)

	s.logger.Info("frame complete",
		"frame", stats.Frame,
		"generation", stats.Generation,
		"published", stats.Published,
		"samples", stats.Samples,
		"discarded", stats.Discarded,
		"duration", stats.Duration)
	return stats, nil
}

// Run renders frames until ctx is cancelled, Quit is called or maxFrames
// frames have been rendered (0 means no limit). The quit flag is checked
// between frames only. The last frame's stats are returned.
func (s *Session) Run(ctx context.Context, maxFrames int) (FrameStats, error) {
	var last FrameStats
	for n := 0; maxFrames <= 0 || n < maxFrames; n++ {
		if s.quit.Load() {
			return last, nil
		}
		if err := ctx.Err(); err != nil {
			return last, err
		}
		stats, err := s.RenderFrame()
		if err != nil {
			return last, err
		}
		last = stats
	}
	return last, nil
}

// Quit asks Run to stop before the next frame
func (s *Session) Quit() { s.quit.Store(true) }

// Quitting reports whether Quit has been called
func (s *Session) Quitting() bool { return s.quit.Load() }

// Reset discards the accumulated image. It waits for the frame in flight to
// finish.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset()
}

// TryReset is Reset for callers that must not block. It returns
// ErrFrameInFlight while a frame is rendering.
func (s *Session) TryReset() error {
	if !s.mu.TryLock() {
		return ErrFrameInFlight
	}
	defer s.mu.Unlock()
	return s.reset()
}

func (s *Session) reset() error {
	if s.closed {
		return ErrClosed
	}
	s.buffers.Work().Reset()
	s.buffers.Publish()
	s.logger.Debug("accumulation reset")
	return nil
}

// ReloadScene replaces the scene between frames and discards the accumulated
// image. The new scene's camera must match the session's image size. It
// waits for the frame in flight to finish.
func (s *Session) ReloadScene(sc *scene.Scene) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.setScene(sc); err != nil {
		return fmt.Errorf("reload scene: %w", err)
	}
	s.buffers.Work().Reset()
	s.buffers.Publish()
	s.logger.Info("scene reloaded", "primitives", sc.PrimitiveCount(), "lights", len(sc.Lights))
	return nil
}

// Close waits for the frame in flight and stops the worker pool. The session
// cannot render afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.started {
		s.pool.Stop()
	}
}
