package logging

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Session is the file logging installed for one run
type Session struct {
	Logger  *Logger
	file    io.Closer
	restore func()

	closeOnce sync.Once
	closeErr  error
}

// Setup opens the run log file at DEBUG and tees stdout/stderr into it
func Setup(path string) (*Session, error) {
	file, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	base := NewLogger(Config{Level: slog.LevelDebug, Name: "root", Output: file})
	restore, err := Redirect(base)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("redirect standard streams: %w", err)
	}
	return &Session{Logger: base, file: file, restore: restore}, nil
}

// Close drains the tees, restores the standard streams and closes the log
// file. Safe to call more than once and from the signal goroutine.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.restore != nil {
			s.restore()
		}
		s.closeErr = s.file.Close()
	})
	return s.closeErr
}
