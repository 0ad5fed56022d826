package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// TimeFormat matches the regression log line prefix
const TimeFormat = "2006-01-02 15:04:05,000"

// LineHandler writes records as "timestamp:LEVEL:name:message key=value ..."
type LineHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Leveler
	name  string
	attrs []slog.Attr
	group string
}

// NewLineHandler creates a LineHandler
func NewLineHandler(out io.Writer, level slog.Leveler, name string) *LineHandler {
	return &LineHandler{mu: &sync.Mutex{}, out: out, level: level, name: name}
}

// WithName returns a handler with a different logger name
func (h *LineHandler) WithName(name string) *LineHandler {
	c := *h
	c.name = name
	return &c
}

// Enabled implements slog.Handler
func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler
func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format(TimeFormat))
	b.WriteByte(':')
	b.WriteString(levelName(r.Level))
	b.WriteByte(':')
	b.WriteString(h.name)
	b.WriteByte(':')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, h.group, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// WithAttrs implements slog.Handler
func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &c
}

// WithGroup implements slog.Handler
func (h *LineHandler) WithGroup(name string) slog.Handler {
	c := *h
	if c.group != "" {
		name = c.group + "." + name
	}
	c.group = name
	return &c
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value.Resolve())
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
