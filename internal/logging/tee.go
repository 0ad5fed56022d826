package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// terminalColors matches the SGR/erase sequences emitted by coloured test output
var terminalColors = regexp.MustCompile(`(\x1b\[[0-9]{1,2}(;([0-9]{1,2})?){0,2}[mK]|\x1b\(B\x1b\[m)`)

// Stream is the set of stream operations the harness needs from stdout/stderr
type Stream interface {
	io.Writer
	Flush() error
	Fd() uintptr
}

// Tee writes everything to the console and every line, uncoloured, to a logger
type Tee struct {
	console io.Writer
	logger  *slog.Logger
	level   slog.Level
}

var _ Stream = (*Tee)(nil)

// NewTee creates a Tee over a console writer
func NewTee(console io.Writer, logger *slog.Logger, level slog.Level) *Tee {
	return &Tee{console: console, logger: logger, level: level}
}

// Write writes p verbatim to the console and logs each non-empty line
func (t *Tee) Write(p []byte) (int, error) {
	n, err := t.console.Write(p)
	for _, line := range splitLines(strings.TrimRight(string(p), " \t\r\n")) {
		line = StripColors(strings.TrimRight(line, " \t"))
		if line == "" {
			continue
		}
		t.logger.Log(context.Background(), t.level, line)
	}
	return n, err
}

// Flush is a no-op; the console buffers on its own
func (t *Tee) Flush() error {
	return nil
}

// Fd returns the console's descriptor, or ^uintptr(0) when it has none
func (t *Tee) Fd() uintptr {
	if f, ok := t.console.(interface{ Fd() uintptr }); ok {
		return f.Fd()
	}
	return ^uintptr(0)
}

// StripColors removes terminal colour sequences
func StripColors(s string) string {
	return terminalColors.ReplaceAllString(s, "")
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
}

// Redirect installs tees over os.Stdout (INFO, logger STDOUT) and os.Stderr
// (ERROR, logger STDERR). The returned func restores the original streams and
// drains what was written before it.
func Redirect(base *Logger) (restore func(), err error) {
	outTee := NewTee(os.Stdout, base.Named("STDOUT").Logger, slog.LevelInfo)
	errTee := NewTee(os.Stderr, base.Named("STDERR").Logger, slog.LevelError)

	restoreOut, err := redirectFile(&os.Stdout, outTee)
	if err != nil {
		return nil, err
	}
	restoreErr, err := redirectFile(&os.Stderr, errTee)
	if err != nil {
		restoreOut()
		return nil, err
	}

	prevOut, prevErr := color.Output, color.Error
	color.Output, color.Error = os.Stdout, os.Stderr

	return func() {
		color.Output, color.Error = prevOut, prevErr
		restoreErr()
		restoreOut()
	}, nil
}

func redirectFile(target **os.File, tee *Tee) (func(), error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	orig := *target
	*target = w

	done := make(chan struct{})
	go func() {
		defer close(done)
		pump(r, tee)
	}()

	return func() {
		*target = orig
		w.Close()
		<-done
		r.Close()
	}, nil
}

// pump copies pipe data into the tee, holding back an unterminated tail so
// log lines are not split across reads.
func pump(r io.Reader, tee *Tee) {
	const maxPending = 4096
	buf := make([]byte, 32*1024)
	var pending []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			cut := bytes.LastIndexAny(pending, "\r\n")
			switch {
			case cut >= 0:
				tee.Write(pending[:cut+1])
				pending = append(pending[:0], pending[cut+1:]...)
			case len(pending) >= maxPending:
				tee.Write(pending)
				pending = pending[:0]
			}
		}
		if err != nil {
			if len(pending) > 0 {
				tee.Write(pending)
			}
			if !errors.Is(err, io.EOF) {
				tee.logger.Error("stream redirect stopped", "error", err)
			}
			return
		}
	}
}
