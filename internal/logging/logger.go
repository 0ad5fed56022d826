package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger provides structured logging capabilities
type Logger struct {
	*slog.Logger
}

// Config represents logger configuration
type Config struct {
	Level  slog.Level
	Name   string
	Output io.Writer
}

// NewLogger creates a logger writing "time:LEVEL:name:message" lines
func NewLogger(config Config) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	name := config.Name
	if name == "" {
		name = "root"
	}
	return &Logger{
		Logger: slog.New(NewLineHandler(output, config.Level, name)),
	}
}

// Named returns a logger sharing the output with a different logger name
func (l *Logger) Named(name string) *Logger {
	if h, ok := l.Handler().(*LineHandler); ok {
		return &Logger{Logger: slog.New(h.WithName(name))}
	}
	return &Logger{Logger: l.With("logger", name)}
}

// WithContext adds contextual fields to the logger
func (l *Logger) WithContext(args ...any) *Logger {
	return &Logger{
		Logger: l.With(args...),
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLogger(Config{Output: io.Discard})
}

// PhaseStart logs the start of a run phase
func (l *Logger) PhaseStart(phase string) {
	l.Debug("Phase started", "phase", phase)
}

// SuiteFinished logs the outcome of one suite
func (l *Logger) SuiteFinished(suite string, ran, failed, skipped int) {
	l.Info("Suite finished", "suite", suite, "ran", ran, "failed", failed, "skipped", skipped)
}

// CleanupFailed logs a best-effort teardown step that failed
func (l *Logger) CleanupFailed(step string, err error) {
	l.Warn("Cleanup step failed", "step", step, "error", err)
}
