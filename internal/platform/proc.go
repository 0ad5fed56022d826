// Package platform holds process helpers used to tear down the application
// under test and orphaned browser processes.
package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

// KillTree kills pid and every descendant, children first.
// A process that already exited is not an error.
func KillTree(ctx context.Context, pid int) error {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil
		}
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	return killTree(ctx, p)
}

func killTree(ctx context.Context, p *process.Process) error {
	// A failed listing counts as no children: on Linux pgrep exits 1 for a
	// leaf process, which does not surface as ErrorNoChildren.
	children, _ := p.ChildrenWithContext(ctx)

	var errs []error
	for _, child := range children {
		if err := killTree(ctx, child); err != nil {
			errs = append(errs, err)
		}
	}
	if running, _ := p.IsRunningWithContext(ctx); running {
		if err := p.KillWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kill %d: %w", p.Pid, err))
		}
	}
	return errors.Join(errs...)
}

// Descendants returns the pids below pid
func Descendants(ctx context.Context, pid int) ([]int, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, err
	}
	var out []int
	var walk func(*process.Process)
	walk = func(p *process.Process) {
		children, _ := p.ChildrenWithContext(ctx)
		for _, c := range children {
			out = append(out, int(c.Pid))
			walk(c)
		}
	}
	walk(p)
	return out, nil
}

// Running reports whether pid is alive
func Running(ctx context.Context, pid int) bool {
	ok, err := process.PidExistsWithContext(ctx, int32(pid))
	return err == nil && ok
}
