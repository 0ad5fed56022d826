package execution

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"regress/internal/config"
	"regress/internal/discovery"
	"regress/internal/domain"
	"regress/internal/logging"
	"regress/internal/ui"
)

// SQLExecutor runs the pure SQL suite against the backend.
// Each case runs in its own transaction, which is always rolled back.
type SQLExecutor struct {
	cfg     *config.Config
	db      *sql.DB
	scanner *discovery.Scanner
	parser  *discovery.Parser
	filter  *discovery.Filter
	out     io.Writer
	log     *logging.Logger

	// Progress shows a progress bar while cases run
	Progress bool
}

// NewSQLExecutor creates a SQL executor over db
func NewSQLExecutor(cfg *config.Config, db *sql.DB, log *logging.Logger) *SQLExecutor {
	if log == nil {
		log = logging.Discard()
	}
	return &SQLExecutor{
		cfg:     cfg,
		db:      db,
		scanner: discovery.NewScanner(cfg.PathsToIgnore),
		parser:  discovery.NewParser(),
		filter:  discovery.NewFilter(),
		out:     color.Output,
		log:     log.Named("sql"),
	}
}

// SetOutput redirects the executor's report lines
func (e *SQLExecutor) SetOutput(w io.Writer) {
	e.out = w
}

// Cases collects the SQL cases selected by the arguments.
// A missing SQL test directory yields no cases.
func (e *SQLExecutor) Cases() ([]domain.SQLCase, error) {
	root := e.cfg.GetSQLTestPath()
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		e.log.Debug("No SQL test directory", "path", root)
		return nil, nil
	}
	files, err := e.scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	files = e.filter.FilterByName(files, e.cfg.Args.SQLFilter)

	var cases []domain.SQLCase
	for _, f := range files {
		found, err := e.parser.FindTestCases(f)
		if err != nil {
			return nil, err
		}
		cases = append(cases, found...)
	}
	return cases, nil
}

// CaseName renders a SQL case like a scenario case: "<case> (<relative file>)"
func (e *SQLExecutor) CaseName(c domain.SQLCase) string {
	rel, err := filepath.Rel(e.cfg.GetSQLTestPath(), c.FilePath)
	if err != nil {
		rel = c.FilePath
	}
	return fmt.Sprintf("%s (%s)", c.Name, filepath.ToSlash(rel))
}

// Execute implements Executor
func (e *SQLExecutor) Execute(ctx context.Context) (*Result, error) {
	cases, err := e.Cases()
	if err != nil {
		return nil, fmt.Errorf("collect sql tests: %w", err)
	}

	fmt.Fprintln(e.out, "\nExecuting SQL test cases")
	result := NewResult()
	if len(cases) == 0 {
		fmt.Fprintln(e.out, "\nRan 0 tests")
		return result, nil
	}

	var progress *ui.ProgressBar
	if e.Progress {
		progress = ui.NewProgressBar(len(cases), "Running SQL tests")
	}

	for _, c := range cases {
		if ctx.Err() != nil {
			break
		}
		name := e.CaseName(c)
		switch {
		case c.SkipReason != "":
			result.addSkip(name, c.SkipReason)
		default:
			if err := e.runCase(ctx, c); err != nil {
				result.addFailure(name, err.Error())
				e.log.Debug("SQL case failed", "case", name, "error", err)
			} else {
				result.addSuccess(name)
			}
		}
		if progress != nil {
			progress.Update(len(result.Passed), len(result.Failed), len(result.Skipped))
		}
	}
	if progress != nil {
		progress.Finish()
	}

	fmt.Fprintf(e.out, "Ran %d test%s\n", result.Ran, plural(result.Ran))
	for _, name := range result.Failed {
		color.New(color.FgRed).Fprintf(e.out, "FAIL: %s\n", name)
	}
	return result, nil
}

func (e *SQLExecutor) runCase(ctx context.Context, c domain.SQLCase) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, c.Statement); err != nil {
		return err
	}
	return nil
}
