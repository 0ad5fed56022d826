package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"regress/internal/config"
	"regress/internal/discovery"
	"regress/internal/domain"
	"regress/internal/suite"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	parser *discovery.Parser
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to the colour output
func NewFormatter(cfg *config.Config, parser *discovery.Parser) *Formatter {
	return &Formatter{
		config: cfg,
		parser: parser,
		out:    color.Output,
	}
}

// SetOutput redirects the formatter
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

func (f *Formatter) line(c *color.Color, format string, args ...any) {
	c.Fprintf(f.out, format+"\n", args...)
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// PrintSummary prints the per-suite statistics of a report and the failed cases as a tree
func (f *Formatter) PrintSummary(report *domain.Report) {
	fmt.Fprintln(f.out)
	f.line(cyan, "╔═══════════════════════════════════════════════════════════════╗")
	f.line(cyan, "║                   Regression Test Summary                     ║")
	f.line(cyan, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	fmt.Fprintln(f.out, "┌─────────┬───────────────────────────────────┬───────┬────────┬─────────┐")
	fmt.Fprintf(f.out, "│ %-7s │ %-33s │ %5s │ %6s │ %7s │\n", "Suite", "Server", "Ran", "Failed", "Skipped")
	for _, set := range report.Suites() {
		for _, server := range sortedServers(set.Results) {
			res := set.Results[server]
			fmt.Fprintln(f.out, "├─────────┼───────────────────────────────────┼───────┼────────┼─────────┤")
			fmt.Fprintf(f.out, "│ %-7s │ %-33s │ %5d │ ", set.Name, truncate(strings.ReplaceAll(server, "\t", " "), 33), res.Ran)
			c := green
			if res.HasFailures() {
				c = red
			}
			c.Fprintf(f.out, "%6d", len(res.Failed))
			fmt.Fprint(f.out, " │ ")
			yellow.Fprintf(f.out, "%7d", len(res.Skipped))
			fmt.Fprintln(f.out, " │")
		}
	}
	fmt.Fprintln(f.out, "└─────────┴───────────────────────────────────┴───────┴────────┴─────────┘")

	fmt.Fprintln(f.out)
	failures := report.Failures()
	if len(failures) == 0 {
		f.line(green, "✓ All tests passed!")
		return
	}
	f.line(red, "✗ %d test case(s) failed", len(failures))
	fmt.Fprintln(f.out)
	f.printFailedTree(failures)
}

// printFailedTree prints failures grouped by suite, then server
func (f *Formatter) printFailedTree(failures []domain.CaseFailure) {
	var lastSuite, lastServer string
	for i, fail := range failures {
		if fail.Suite != lastSuite {
			f.line(cyan, "%s", fail.Suite)
			lastSuite, lastServer = fail.Suite, ""
		}
		if fail.Server != lastServer {
			f.line(yellow, "  |_%s", strings.ReplaceAll(fail.Server, "\t", " "))
			lastServer = fail.Server
		}
		connector := "     |_"
		if i+1 < len(failures) && failures[i+1].Suite == fail.Suite && failures[i+1].Server == fail.Server {
			connector = "  |  |_"
		}
		f.line(red, "%s%s", connector, fail.Case)
	}
}

// PrintModuleList prints discovered modules and their generators as a tree
func (f *Formatter) PrintModuleList(primary, secondary []suite.Module, showGenerators bool) {
	for _, group := range []struct {
		title   string
		modules []suite.Module
	}{
		{"pgAdmin4", primary},
		{"PEM", secondary},
	} {
		f.line(green, "Found %d %s test module(s):", len(group.modules), group.title)
		for i, m := range group.modules {
			isLastModule := i == len(group.modules)-1
			branch, indent := "├── ", "│   "
			if isLastModule {
				branch, indent = "└── ", "    "
			}
			f.line(cyan, "%s%s", branch, m.Key)
			if !showGenerators {
				continue
			}
			for j, fac := range m.Factories {
				leaf := "├── "
				if j == len(m.Factories)-1 {
					leaf = "└── "
				}
				fmt.Fprintf(f.out, "%s%s%s\n", indent, leaf, yellow.Sprint(fac.Name))
			}
		}
		fmt.Fprintln(f.out)
	}
}

// CountTestCases returns the total number of SQL cases across the given files
func (f *Formatter) CountTestCases(files []string) (int, error) {
	var total int
	for _, file := range files {
		cases, err := f.parser.FindTestCases(file)
		if err != nil {
			return 0, err
		}
		total += len(cases)
	}
	return total, nil
}

// PrintSQLTestList prints SQL test files, optionally with their cases
func (f *Formatter) PrintSQLTestList(files []string, showTestCases bool) error {
	f.line(green, "Found %d SQL test file(s):", len(files))

	root := f.config.GetSQLTestPath()
	for i, file := range files {
		relPath, err := filepath.Rel(root, file)
		if err != nil {
			relPath = file
		}

		isLastFile := i == len(files)-1
		branch, indent := "├── ", "│   "
		if isLastFile {
			branch, indent = "└── ", "    "
		}
		f.line(cyan, "%s%s", branch, relPath)
		if !showTestCases {
			continue
		}

		cases, err := f.parser.FindTestCases(file)
		if err != nil {
			f.line(red, "Error reading test file %s: %v", file, err)
			continue
		}
		if len(cases) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, red.Sprint("(no test cases found)"))
			continue
		}
		for j, c := range cases {
			leaf := "├── "
			if j == len(cases)-1 {
				leaf = "└── "
			}
			name := yellow.Sprint(c.Name)
			if c.SkipReason != "" {
				name += white.Sprintf(" (skip: %s)", c.SkipReason)
			}
			fmt.Fprintf(f.out, "%s%s%s\n", indent, leaf, name)
		}
	}
	return nil
}

func sortedServers(set domain.ResultSet) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
