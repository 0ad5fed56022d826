package generators

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"regress/internal/browser"
	"regress/internal/suite"
)

func init() {
	register("pgadmin.feature_tests.browser_title", "BrowserTitleFeatureTest", func(name string) suite.Generator {
		return &BrowserTitleFeatureTest{name: name}
	})
}

// BrowserTitleFeatureTest loads the application in the browser session
type BrowserTitleFeatureTest struct {
	suite.Base
	name string
}

func (t *BrowserTitleFeatureTest) Name() string { return t.name }

func (t *BrowserTitleFeatureTest) Scenarios() []suite.Scenario { return nil }

func (t *BrowserTitleFeatureTest) Run(ctx context.Context, _ suite.Scenario) error {
	if t.F.Driver == nil {
		return suite.Skip("no browser session")
	}
	var title string
	err := t.F.Driver.Run(30*time.Second,
		chromedp.Navigate(t.F.GUIServerURL),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Title(&title),
	)
	if err != nil {
		return err
	}
	browser.DismissPopups(ctx, t.F.Driver, nil)
	if !strings.Contains(title, "pgAdmin") && !strings.Contains(title, "PEM") {
		return fmt.Errorf("unexpected page title %q", title)
	}
	return nil
}
