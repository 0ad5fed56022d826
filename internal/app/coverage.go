package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Coverage collects coverage counters of the application process through GOCOVERDIR
type Coverage struct {
	Dir     string
	started bool
	stopped bool
}

// NewCoverage returns nil when coverage is disabled
func NewCoverage(enabled bool, dir string) *Coverage {
	if !enabled {
		return nil
	}
	return &Coverage{Dir: dir}
}

// Start creates the counter directory
func (c *Coverage) Start() error {
	if c == nil || c.started {
		return nil
	}
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("create coverage dir: %w", err)
	}
	c.started = true
	return nil
}

// Env returns the environment the instrumented process needs
func (c *Coverage) Env() []string {
	if c == nil {
		return nil
	}
	return []string{"GOCOVERDIR=" + c.Dir}
}

// Stop reports where the counters were written. Safe on nil and when repeated.
func (c *Coverage) Stop() (string, error) {
	if c == nil || !c.started || c.stopped {
		return "", nil
	}
	c.stopped = true
	files, err := filepath.Glob(filepath.Join(c.Dir, "cov*"))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Coverage data (%d files) written to %s", len(files), c.Dir), nil
}
