// Package server exposes a running render session over HTTP: tonemapped
// frames, status, pixel inspection and a server-sent event stream.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/display"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/tiff"
)

// snapshotRetries bounds how long a request waits for the published buffer
const snapshotRetries = 50

// Server handles web requests for a render session
type Server struct {
	session     *renderer.Session
	toneMapper  display.ToneMapper
	echo        *echo.Echo
	logger      *slog.Logger
	consoleChan <-chan ConsoleMessage

	// serializes consumers; the producer is never blocked by it
	consumer sync.Mutex
	last     atomic.Pointer[renderer.FrameStats]
}

// Status represents the JSON body of GET /status
type Status struct {
	Scene          string  `json:"scene"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Frame          uint64  `json:"frame"`
	Generation     uint64  `json:"generation"`
	Workers        int     `json:"workers"`
	Quitting       bool    `json:"quitting"`
	LastSamples    int     `json:"lastSamples"`
	LastDiscarded  int     `json:"lastDiscarded"`
	AvgPathLength  float64 `json:"avgPathLength"`
	LastFrameMs    int64   `json:"lastFrameMs"`
	SamplesPerPass int     `json:"samplesPerFrame"`
}

// NewServer creates a web server for session. consoleChan may be nil.
func NewServer(session *renderer.Session, sceneName string, logger *slog.Logger, consoleChan <-chan ConsoleMessage) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		session:     session,
		toneMapper:  display.DefaultToneMapper(),
		echo:        echo.New(),
		logger:      logger,
		consoleChan: consoleChan,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(corsMiddleware)

	s.echo.GET("/api/health", s.handleHealth)
	s.echo.GET("/status", func(c echo.Context) error { return s.handleStatus(c, sceneName) })
	s.echo.GET("/frame.png", s.handleFramePNG)
	s.echo.GET("/frame.tiff", s.handleFrameTIFF)
	s.echo.GET("/thumbnail.png", s.handleThumbnail)
	s.echo.GET("/api/inspect", s.handleInspect)
	s.echo.GET("/api/events", s.handleEvents)
	s.echo.POST("/quit", s.handleQuit)
	return s
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.logger.Info("starting web server", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// RenderLoop renders frames until ctx is cancelled, the session quits or
// maxFrames is reached, recording each frame's stats for /status
func (s *Server) RenderLoop(ctx context.Context, maxFrames int) error {
	for n := 0; maxFrames <= 0 || n < maxFrames; n++ {
		if s.session.Quitting() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		stats, err := s.session.RenderFrame()
		if err != nil {
			return err
		}
		s.last.Store(&stats)
	}
	return nil
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}
		return next(c)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(sceneName string) Status {
	cfg := s.session.Config()
	st := Status{
		Scene:          sceneName,
		Width:          cfg.Width,
		Height:         cfg.Height,
		Frame:          s.session.Frame(),
		Generation:     s.session.Buffers().Generation(),
		Workers:        s.session.NumWorkers(),
		Quitting:       s.session.Quitting(),
		SamplesPerPass: cfg.SamplesPerFrame,
	}
	if last := s.last.Load(); last != nil {
		st.LastSamples = last.Samples
		st.LastDiscarded = last.Discarded
		st.AvgPathLength = last.AveragePathLength()
		st.LastFrameMs = last.Duration.Milliseconds()
	}
	return st
}

func (s *Server) handleStatus(c echo.Context, sceneName string) error {
	return c.JSON(http.StatusOK, s.status(sceneName))
}

// snapshot tonemaps the published frame, waiting briefly while the producer
// is mid-publish
func (s *Server) snapshot() (*image.RGBA, error) {
	s.consumer.Lock()
	defer s.consumer.Unlock()
	for i := 0; i < snapshotRetries; i++ {
		if img, ok := s.toneMapper.Snapshot(s.session.Buffers()); ok {
			return img, nil
		}
		time.Sleep(time.Millisecond)
	}
	return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "frame buffer busy")
}

func (s *Server) handleFramePNG(c echo.Context) error {
	img, err := s.snapshot()
	if err != nil {
		return err
	}
	return writePNG(c, img)
}

func (s *Server) handleFrameTIFF(c echo.Context) error {
	img, err := s.snapshot()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("encode tiff: %w", err)
	}
	return c.Blob(http.StatusOK, "image/tiff", buf.Bytes())
}

func (s *Server) handleThumbnail(c echo.Context) error {
	size, err := parseIntParam(c, "size", 128, 8, 1024)
	if err != nil {
		return err
	}
	img, err := s.snapshot()
	if err != nil {
		return err
	}
	return writePNG(c, display.Thumbnail(img, size))
}

func writePNG(c echo.Context, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleQuit(c echo.Context) error {
	s.logger.Info("quit requested")
	s.session.Quit()
	return c.JSON(http.StatusAccepted, map[string]string{"status": "quitting"})
}

// handleEvents streams a "frame" event whenever the generation advances and
// forwards console messages until the client disconnects or the session quits
func (s *Server) handleEvents(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	console := s.consoleChan
	lastGen := ^uint64(0)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-console:
			if !ok {
				console = nil
				continue
			}
			if err := writeSSE(w, "console", msg); err != nil {
				return err
			}
		case <-ticker.C:
			if gen := s.session.Buffers().Generation(); gen != lastGen {
				lastGen = gen
				if err := writeSSE(w, "frame", s.status("")); err != nil {
					return err
				}
			}
			if s.session.Quitting() {
				return writeSSE(w, "complete", map[string]string{"status": "quit"})
			}
		}
	}
}

func writeSSE(w *echo.Response, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// parseIntParam parses an integer query parameter with validation
func parseIntParam(c echo.Context, key string, defaultValue, min, max int) (int, error) {
	value := c.QueryParam(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s: %s", key, value))
	}
	if parsed < min || parsed > max {
		return 0, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("%s must be between %d and %d, got: %d", key, min, max, parsed))
	}
	return parsed, nil
}
