package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar creates and manages progress bars
type ProgressBar struct {
	bar   *progressbar.ProgressBar
	label string
}

// NewProgressBar creates a new progress bar
func NewProgressBar(count int, label string) *ProgressBar {
	p := &ProgressBar{label: label}
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(p.describe(0, 0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	p.bar = bar
	return p
}

func (p *ProgressBar) describe(passed, failed, skipped int) string {
	return color.CyanString("%s: ", p.label) +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d", failed) +
		" | " +
		color.YellowString("skipped: %d]", skipped)
}

// Update updates the progress bar with the case counts
func (p *ProgressBar) Update(passed, failed, skipped int) {
	p.bar.Set(passed + failed + skipped)
	p.bar.Describe(p.describe(passed, failed, skipped))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}
