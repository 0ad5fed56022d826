package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"regress/internal/platform"
)

// PingPath answers once the application is ready
const PingPath = "/misc/ping"

// Starter launches the application process and stops it at teardown
type Starter struct {
	inst         *Instance
	pollInterval time.Duration
	timeout      time.Duration

	cmd      *exec.Cmd
	stopOnce sync.Once
	stopErr  error
}

// NewStarter creates a starter for inst
func NewStarter(inst *Instance) *Starter {
	return &Starter{inst: inst, pollInterval: 500 * time.Millisecond, timeout: 60 * time.Second}
}

// Start launches the configured command, if any, and waits until the
// application answers. It returns the application URL.
func (s *Starter) Start(ctx context.Context) (string, error) {
	if args := s.inst.opts.Command; len(args) > 0 {
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Env = append(os.Environ(), s.inst.Env()...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return "", fmt.Errorf("start application: %w", err)
		}
		s.cmd = cmd
		s.inst.log.Info("Application started", "pid", cmd.Process.Pid, "command", strings.Join(args, " "))
	}

	url := s.inst.URL()
	if err := s.waitReady(ctx, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Starter) waitReady(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(url, "/")+PingPath, nil)
		if err != nil {
			return fmt.Errorf("build ping request: %w", err)
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			lastErr = fmt.Errorf("ping returned %s", resp.Status)
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("application at %s not ready: %w", url, errors.Join(ctx.Err(), lastErr))
		case <-ticker.C:
		}
	}
}

// Stop kills the application process tree. Safe to call more than once.
func (s *Starter) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		if s.cmd == nil || s.cmd.Process == nil {
			return
		}
		s.stopErr = platform.KillTree(ctx, s.cmd.Process.Pid)
		if err := s.cmd.Wait(); err != nil && !killedBySignal(err) {
			s.inst.log.Debug("Application exited", "pid", s.cmd.Process.Pid, "error", err)
		}
	})
	return s.stopErr
}

func killedBySignal(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled()
}
