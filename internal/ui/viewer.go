package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"regress/internal/domain"
	"regress/internal/storage"
)

// ReportViewer displays the failed cases of a report in an interactive TUI
type ReportViewer struct {
	storage storage.Storage
}

// NewReportViewer creates a new ReportViewer
func NewReportViewer(st storage.Storage) *ReportViewer {
	return &ReportViewer{storage: st}
}

// View displays the failures; R toggles a resolved mark that is saved with the details
func (rv *ReportViewer) View(report *domain.Report) error {
	failures := report.Failures()
	if len(failures) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	details, err := rv.storage.LoadDetails()
	if err != nil {
		return err
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i, f := range failures {
		list.AddItem(listItemText(i, f, details[f.Key()].Resolved), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		unresolved := 0
		for _, f := range failures {
			if !details[f.Key()].Resolved {
				unresolved++
			}
		}
		headerView.SetText(fmt.Sprintf(" Test Failures (%d total, %d unresolved) | Use ↑↓ to navigate, [yellow]R[white] to mark resolved, → to view details, ← to go back, Ctrl+C to exit ", len(failures), unresolved))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(failures) {
			return
		}
		f := failures[index]
		statsView.SetText(formatFailureStats(f))
		detailsView.SetText(formatFailureDetails(f, details[f.Key()]))
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(failures) {
					key := failures[index].Key()
					d := details[key]
					d.Resolved = !d.Resolved
					details[key] = d
					list.SetItemText(index, listItemText(index, failures[index], d.Resolved), "")
					updateHeader()
					updateDetails()
					// a failed save only loses the mark
					_ = rv.storage.SaveDetails(details)
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func listItemText(index int, f domain.CaseFailure, resolved bool) string {
	if resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, tview.Escape(f.Case))
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, tview.Escape(f.Case))
}

// formatFailureDetails formats a failure for display using tview color tags
func formatFailureDetails(f domain.CaseFailure, d domain.FailureDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[red]✗ Test: %s[white]\n\n", tview.Escape(f.Case))
	fmt.Fprintf(&b, "[cyan]Suite: %s[white]\n", f.Suite)
	fmt.Fprintf(&b, "[cyan]Server: %s[white]\n\n", tview.Escape(strings.ReplaceAll(f.Server, "\t", " ")))
	if d.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", tview.Escape(d.Message))
	} else {
		b.WriteString("[gray]No failure message was recorded[white]\n")
	}
	return b.String()
}

func formatFailureStats(f domain.CaseFailure) string {
	return fmt.Sprintf("[cyan]suite:[white] [yellow]%s[white]::[yellow]%s[white]\n", f.Suite, tview.Escape(f.Case))
}
