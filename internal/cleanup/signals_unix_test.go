//go:build !windows

package cleanup

import (
	"context"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_SignalFiresAndExits(t *testing.T) {
	c := New(nil)

	var calls atomic.Int32
	exited := make(chan int, 1)
	c.exit = func(code int) { exited <- code }
	c.Arm(func() { calls.Add(1) })

	stop := c.Install(context.Background())
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(5 * time.Second):
		t.Fatal("signal was not handled")
	}

	c.Fire()
	assert.Equal(t, int32(1), calls.Load())
}

func TestCoordinator_SignalRunsHooksBeforeExit(t *testing.T) {
	c := New(nil)

	var mu sync.Mutex
	var order []string
	record := func(step string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, step)
		}
	}
	exited := make(chan struct{})
	c.exit = func(int) {
		record("exit")()
		close(exited)
	}
	c.AtExit(record("close log"))
	c.AtExit(record("drop objects"))
	c.Arm(record("cleanup"))

	stop := c.Install(context.Background())
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("signal was not handled")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"cleanup", "drop objects", "close log", "exit"}, order)
}
