package server

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warn", "error"
}

// ConsoleHandler is a slog.Handler that forwards records to the web console
// and then to an inner handler for the server logs
type ConsoleHandler struct {
	inner       slog.Handler
	consoleChan chan<- ConsoleMessage
	attrs       []slog.Attr
}

// NewConsoleHandler wraps inner. Messages are dropped when consoleChan is full.
func NewConsoleHandler(inner slog.Handler, consoleChan chan<- ConsoleMessage) *ConsoleHandler {
	return &ConsoleHandler{inner: inner, consoleChan: consoleChan}
}

func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.consoleChan != nil {
		var b strings.Builder
		b.WriteString(r.Message)
		appendAttr := func(a slog.Attr) bool {
			b.WriteString(" ")
			b.WriteString(a.Key)
			b.WriteString("=")
			b.WriteString(a.Value.String())
			return true
		}
		for _, a := range h.attrs {
			appendAttr(a)
		}
		r.Attrs(appendAttr)

		select {
		case h.consoleChan <- ConsoleMessage{
			Message:   b.String(),
			Timestamp: r.Time,
			Level:     strings.ToLower(r.Level.String()),
		}:
		default:
			// Channel full, skip (don't block the renderer)
		}
	}
	return h.inner.Handle(ctx, r)
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ConsoleHandler{
		inner:       h.inner.WithAttrs(attrs),
		consoleChan: h.consoleChan,
		attrs:       append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	return &ConsoleHandler{inner: h.inner.WithGroup(name), consoleChan: h.consoleChan, attrs: h.attrs}
}
