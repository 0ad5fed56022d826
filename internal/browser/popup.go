package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"regress/internal/logging"
)

// Selector locates an element by CSS query or XPath
type Selector struct {
	Query string
	XPath bool
}

// PopupFinder is the subset of a browser session the popup dismisser needs
type PopupFinder interface {
	// FindOptional reports whether the element is present without waiting for it
	FindOptional(ctx context.Context, sel Selector) (bool, error)
	Click(ctx context.Context, sel Selector) error
}

var (
	popupClose = Selector{Query: ".btn.btn-sm-sq.btn-primary.pg-bg-close > i"}

	popups = []struct {
		name string
		sel  Selector
	}{
		{"backup", Selector{Query: ".ajs-message.ajs-bg-bgprocess.ajs-visible"}},
		{"restore", Selector{Query: "//div[@class='card-header bg-primary d-flex']/div[contains(text(), 'Restoring backup')]", XPath: true}},
		{"maintenance", Selector{Query: "//div[@class='card-header bg-primary d-flex']/div[contains(text(), 'Maintenance')]", XPath: true}},
	}
)

// DismissPopups closes the background process, restore and maintenance
// banners when they are showing. Misses are logged at debug level only.
func DismissPopups(ctx context.Context, f PopupFinder, log *logging.Logger) {
	if log == nil {
		log = logging.Discard()
	}
	for _, p := range popups {
		present, err := f.FindOptional(ctx, p.sel)
		if err != nil {
			log.Debug("Popup lookup failed", "popup", p.name, "error", err)
			continue
		}
		if !present {
			log.Debug("Checked for popup", "popup", p.name)
			continue
		}
		if err := f.Click(ctx, popupClose); err != nil {
			log.Debug("Popup close failed", "popup", p.name, "error", err)
			continue
		}
		log.Debug("Popup closed", "popup", p.name)
	}
}

const lookupTimeout = 2 * time.Second

func queryOptions(sel Selector) []chromedp.QueryOption {
	if sel.XPath {
		return []chromedp.QueryOption{chromedp.BySearch}
	}
	return []chromedp.QueryOption{chromedp.ByQuery}
}

// FindOptional implements PopupFinder
func (d *Driver) FindOptional(ctx context.Context, sel Selector) (bool, error) {
	ctx, cancel := context.WithTimeout(d.sessionContext(ctx), lookupTimeout)
	defer cancel()

	var nodes []*cdp.Node
	opts := append(queryOptions(sel), chromedp.AtLeast(0))
	if err := chromedp.Run(ctx, chromedp.Nodes(sel.Query, &nodes, opts...)); err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

// Click implements PopupFinder
func (d *Driver) Click(ctx context.Context, sel Selector) error {
	ctx, cancel := context.WithTimeout(d.sessionContext(ctx), lookupTimeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.Click(sel.Query, append(queryOptions(sel), chromedp.NodeVisible)...))
}

// sessionContext returns ctx when it already carries a chromedp session
func (d *Driver) sessionContext(ctx context.Context) context.Context {
	if ctx != nil && chromedp.FromContext(ctx) != nil {
		return ctx
	}
	return d.ctx
}
