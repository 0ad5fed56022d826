// Package browser drives the web console through Chrome DevTools.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"regress/internal/logging"
	"regress/internal/platform"
)

// ErrUnsupportedBrowser is returned for browsers without a DevTools driver
var ErrUnsupportedBrowser = errors.New("unsupported browser")

const (
	loginEmailInput    = `input[name="email"]`
	loginPasswordInput = `input[name="password"]`
	loginSubmit        = `button[type="submit"]`
)

// Driver is one browser session
type Driver struct {
	name string
	log  *logging.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	closeOnce sync.Once
}

// NewDriver launches a browser. chrome and chromium open a window,
// headless runs without one.
func NewDriver(ctx context.Context, name string, log *logging.Logger) (*Driver, error) {
	if log == nil {
		log = logging.Discard()
	}
	name = strings.ToLower(name)

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	switch name {
	case "chrome", "chromium":
		opts = append(opts, chromedp.Flag("headless", false))
	case "headless", "headless_chrome":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBrowser, name)
	}
	opts = append(opts, chromedp.WindowSize(1280, 1024), chromedp.NoSandbox)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	bctx, cancel := chromedp.NewContext(allocCtx)

	// the first Run starts the browser process
	if err := chromedp.Run(bctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	return &Driver{
		name:        name,
		log:         log.Named("browser"),
		ctx:         bctx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}, nil
}

// Name returns the browser name
func (d *Driver) Name() string {
	return d.name
}

// Context returns the session context for chromedp actions
func (d *Driver) Context() context.Context {
	return d.ctx
}

// Run executes actions in the session, bounded by timeout
func (d *Driver) Run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Login opens the application and signs in through the UI.
// Empty credentials only wait for the page, as in desktop mode.
func (d *Driver) Login(url, username, password string) error {
	url = strings.TrimRight(url, "/")
	if username == "" {
		return d.Run(60*time.Second,
			chromedp.Navigate(url),
			chromedp.WaitVisible(`body`, chromedp.ByQuery),
		)
	}
	err := d.Run(60*time.Second,
		chromedp.Navigate(url+"/login"),
		chromedp.WaitVisible(loginEmailInput, chromedp.ByQuery),
		chromedp.SendKeys(loginEmailInput, username, chromedp.ByQuery),
		chromedp.SendKeys(loginPasswordInput, password, chromedp.ByQuery),
		chromedp.Click(loginSubmit, chromedp.ByQuery),
		chromedp.WaitNotPresent(loginPasswordInput, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("log in as %s: %w", username, err)
	}
	d.log.Debug("Logged in through the UI", "user", username)
	return nil
}

// Close ends the session and reaps browser processes left behind.
// Safe to call more than once.
func (d *Driver) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		pid := 0
		if c := chromedp.FromContext(d.ctx); c != nil && c.Browser != nil {
			if p := c.Browser.Process(); p != nil {
				pid = p.Pid
			}
		}
		d.cancel()
		d.allocCancel()
		if pid != 0 && platform.Running(context.Background(), pid) {
			if err := platform.KillTree(context.Background(), pid); err != nil {
				d.log.CleanupFailed("kill browser", err)
			}
		}
	})
}
