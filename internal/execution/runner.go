package execution

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fatih/color"

	"regress/internal/logging"
	"regress/internal/parser"
	"regress/internal/suite"
)

const separator = "----------------------------------------------------------------------"

// Runner runs an assembled suite case by case with coloured, verbose output
type Runner struct {
	out           io.Writer
	serverVersion string
	log           *logging.Logger
}

// NewRunner creates a runner. serverVersion gates scenarios with a minimum version.
func NewRunner(out io.Writer, serverVersion string, log *logging.Logger) *Runner {
	if out == nil {
		out = color.Output
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{out: out, serverVersion: serverVersion, log: log.Named("runner")}
}

// Run executes every case in order and returns a fresh result
func (r *Runner) Run(ctx context.Context, s *suite.Suite) *Result {
	result := NewResult()
	start := time.Now()

	for _, c := range s.Cases() {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(r.out, "%s ... ", c.Name)

		if reason, gated := r.versionGate(c.Scenario); gated {
			result.addSkip(c.Name, reason)
			color.New(color.FgYellow).Fprintf(r.out, "skipped %q\n", reason)
			continue
		}

		err := r.runCase(ctx, c)
		switch reason, skipped := suite.IsSkip(err); {
		case err == nil:
			result.addSuccess(c.Name)
			color.New(color.FgGreen).Fprintln(r.out, "ok")
		case skipped:
			result.addSkip(c.Name, reason)
			color.New(color.FgYellow).Fprintf(r.out, "skipped %q\n", reason)
		default:
			result.addFailure(c.Name, err.Error())
			color.New(color.FgRed).Fprintln(r.out, "FAIL")
			r.log.Debug("Case failed", "case", c.Name, "error", err)
		}
	}

	r.printErrors(result)
	r.printSummary(result, time.Since(start))
	return result
}

// runCase runs one case and turns a panic into a failure
func (r *Runner) runCase(ctx context.Context, c suite.Case) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v\n%s", p, debug.Stack())
		}
	}()
	return c.Run(ctx)
}

func (r *Runner) versionGate(sc suite.Scenario) (string, bool) {
	if sc.MinServerVersion == "" {
		return "", false
	}
	ok, err := parser.MeetsMinimum(r.serverVersion, sc.MinServerVersion)
	if err != nil {
		r.log.Debug("Cannot compare server version", "version", r.serverVersion, "error", err)
		return "", false
	}
	if ok {
		return "", false
	}
	return fmt.Sprintf("requires server version %s or later", sc.MinServerVersion), true
}

func (r *Runner) printErrors(result *Result) {
	red := color.New(color.FgRed)
	for _, name := range result.Failed {
		fmt.Fprintln(r.out, strings.Repeat("=", len(separator)))
		red.Fprintf(r.out, "FAIL: %s\n", name)
		fmt.Fprintln(r.out, separator)
		fmt.Fprintln(r.out, result.Messages[name])
	}
}

func (r *Runner) printSummary(result *Result, elapsed time.Duration) {
	fmt.Fprintln(r.out, separator)
	fmt.Fprintf(r.out, "Ran %d test%s in %.3fs\n\n", result.Ran, plural(result.Ran), elapsed.Seconds())

	var infos []string
	if n := len(result.Failed); n > 0 {
		infos = append(infos, fmt.Sprintf("failures=%d", n))
	}
	if n := len(result.Skipped); n > 0 {
		infos = append(infos, fmt.Sprintf("skipped=%d", n))
	}
	extra := ""
	if len(infos) > 0 {
		extra = " (" + strings.Join(infos, ", ") + ")"
	}

	if result.WasSuccessful() {
		color.New(color.FgGreen).Fprintf(r.out, "OK%s\n", extra)
	} else {
		color.New(color.FgRed).Fprintf(r.out, "FAILED%s\n", extra)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// SuiteExecutor adapts an assembled suite to Executor
type SuiteExecutor struct {
	Runner *Runner
	Suite  *suite.Suite
}

// Execute implements Executor
func (e *SuiteExecutor) Execute(ctx context.Context) (*Result, error) {
	return e.Runner.Run(ctx, e.Suite), nil
}
