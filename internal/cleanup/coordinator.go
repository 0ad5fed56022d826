package cleanup

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"regress/internal/logging"
)

// Coordinator owns the single cleanup callback of a process.
// It moves from armed to fired exactly once, on a trapped signal or on Fire.
type Coordinator struct {
	log *logging.Logger

	mu       sync.Mutex
	callback func()
	hooks    []func()
	once     sync.Once
	fired    bool

	// exit terminates the process after a trapped signal
	exit func(code int)
}

// New creates an unarmed coordinator
func New(log *logging.Logger) *Coordinator {
	if log == nil {
		log = logging.Discard()
	}
	return &Coordinator{log: log, exit: os.Exit}
}

// SetLogger replaces the logger, e.g. once the run log file is open
func (c *Coordinator) SetLogger(log *logging.Logger) {
	if log == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = log
}

// Arm sets the cleanup callback. A later Arm replaces an earlier one.
func (c *Coordinator) Arm(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callback = fn
}

// AtExit registers a hook run after the callback, last registered first
func (c *Coordinator) AtExit(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// Install subscribes to the termination signals supported by the host.
// On delivery the coordinator fires and the process exits with status 1.
// The returned func unsubscribes.
func (c *Coordinator) Install(ctx context.Context) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, terminationSignals...)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-ch:
			c.log.Warn("Received termination signal", "signal", sig.String())
			c.Fire()
			c.exit(1)
		case <-ctx.Done():
		case <-done:
		}
	}()

	var stopOnce sync.Once
	return func() {
		stopOnce.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}

// Fire runs the callback and then the exit hooks. Only the first call has an effect.
func (c *Coordinator) Fire() {
	c.once.Do(func() {
		c.mu.Lock()
		callback := c.callback
		hooks := append([]func(){}, c.hooks...)
		c.fired = true
		c.mu.Unlock()

		if callback != nil {
			c.run("cleanup", callback)
		}
		for i := len(hooks) - 1; i >= 0; i-- {
			c.run("exit hook", hooks[i])
		}
	})
}

// Fired reports whether Fire has run
func (c *Coordinator) Fired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

// run invokes fn and logs a panic instead of propagating it
func (c *Coordinator) run(step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Cleanup panicked", "step", step, "panic", r)
		}
	}()
	fn()
}
