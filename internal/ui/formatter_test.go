package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"regress/internal/config"
	"regress/internal/discovery"
	"regress/internal/domain"
	"regress/internal/suite"
)

func newTestFormatter(t *testing.T) (*Formatter, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var buf bytes.Buffer
	f := NewFormatter(config.New(), discovery.NewParser())
	f.SetOutput(&buf)
	return f, &buf
}

func TestFormatter_PrintSummary(t *testing.T) {
	f, buf := newTestFormatter(t)

	report := domain.NewReport()
	report.PgAdmin[domain.DisplayName("PG 16", "16.2")] = domain.SuiteResult{Ran: 3, Failed: []string{"TestA (scenario)"}, Passed: []string{"b", "c"}}
	report.SQL[domain.DisplayName("PG 16", "16.2")] = domain.SuiteResult{Ran: 1, Passed: []string{"q"}}

	f.PrintSummary(report)
	out := buf.String()

	if !strings.Contains(out, "✗ 1 test case(s) failed") {
		t.Errorf("missing failure line:\n%s", out)
	}
	if !strings.Contains(out, "TestA (scenario)") {
		t.Errorf("missing failed case:\n%s", out)
	}
	if strings.Index(out, "│ sql") > strings.Index(out, "│ pgadmin") {
		t.Errorf("sql row should come first:\n%s", out)
	}
}

func TestFormatter_PrintSummaryAllPassed(t *testing.T) {
	f, buf := newTestFormatter(t)
	f.PrintSummary(domain.NewReport())
	if !strings.Contains(buf.String(), "✓ All tests passed!") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestFormatter_PrintModuleList(t *testing.T) {
	f, buf := newTestFormatter(t)

	primary := []suite.Module{{Key: "pgadmin.misc", Factories: []suite.Factory{{Name: "pgadmin.misc.tests.PingTestCase"}}}}
	f.PrintModuleList(primary, nil, true)

	out := buf.String()
	for _, want := range []string{"Found 1 pgAdmin4 test module(s):", "└── pgadmin.misc", "    └── pgadmin.misc.tests.PingTestCase", "Found 0 PEM test module(s):"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdefghijkl", 5); got != "abcd…" {
		t.Errorf("truncate() = %q", got)
	}
}
