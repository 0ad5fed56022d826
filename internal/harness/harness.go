// Package harness drives one regression run from argument validation to the
// persisted report.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/fatih/color"

	"regress/internal/app"
	"regress/internal/browser"
	"regress/internal/cleanup"
	"regress/internal/config"
	"regress/internal/database"
	"regress/internal/discovery"
	"regress/internal/domain"
	"regress/internal/execution"
	"regress/internal/logging"
	"regress/internal/parser"
	"regress/internal/pem"
	"regress/internal/registry"
	"regress/internal/storage"
	"regress/internal/suite"
	"regress/internal/ui"
)

// TestUserCount is the number of auxiliary accounts created for multi-user tests
const TestUserCount = 2

// ExitError carries the process exit status of a finished run
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Options configure a Harness
type Options struct {
	Config      *config.Config
	TestConfig  *config.TestConfig
	Registry    *registry.Registry
	Coordinator *cleanup.Coordinator
	Storage     storage.Storage
	// Log receives harness logs when file logging is disabled
	Log *logging.Logger
	// Stdout and Stderr default to the process streams at the time of writing
	Stdout io.Writer
	Stderr io.Writer
	// NoTee skips the log file and the stdout/stderr tee
	NoTee bool
}

// Harness runs the regression suites against one configured server
type Harness struct {
	cfg      *config.Config
	tc       *config.TestConfig
	registry *registry.Registry
	coord    *cleanup.Coordinator
	storage  storage.Storage
	log      *logging.Logger
	stdout   io.Writer
	stderr   io.Writer
	noTee    bool
	rng      *rand.Rand

	openPrimary func(ctx context.Context, cred config.ServerCredential) (*pem.Conn, error)
}

// New creates a harness
func New(opts Options) *Harness {
	reg := opts.Registry
	if reg == nil {
		reg = registry.Default
	}
	coord := opts.Coordinator
	if coord == nil {
		coord = cleanup.New(opts.Log)
	}
	st := opts.Storage
	if st == nil {
		st = storage.NewJSONStorage(opts.Config)
	}
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	return &Harness{
		cfg:         opts.Config,
		tc:          opts.TestConfig,
		registry:    reg,
		coord:       coord,
		storage:     st,
		log:         log,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		noTee:       opts.NoTee,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		openPrimary: pem.Open,
	}
}

func (h *Harness) out() io.Writer {
	if h.stdout != nil {
		return h.stdout
	}
	return os.Stdout
}

func (h *Harness) errOut() io.Writer {
	if h.stderr != nil {
		return h.stderr
	}
	return os.Stderr
}

func (h *Harness) printf(format string, args ...any) {
	fmt.Fprintf(h.out(), format, args...)
}

// Run executes the whole run and returns the process exit code.
// A non-nil error means the run aborted before the report was written.
func (h *Harness) Run(ctx context.Context) (int, error) {
	args := h.cfg.Args
	rc := NewRunContext(h.log)

	stop := h.coord.Install(ctx)
	defer stop()

	if !h.noTee {
		session, err := logging.Setup(h.cfg.GetLogPath())
		if err != nil {
			return 1, fmt.Errorf("setup logging: %w", err)
		}
		defer session.Close()
		// First hook registered runs last, so a signal exit still drains the tee
		h.coord.AtExit(func() { session.Close() })
		h.log = session.Logger
		h.coord.SetLogger(h.log.Named("cleanup"))
	}
	h.coord.AtExit(rc.DropObjects)
	log := h.log.Named("harness")
	rc.log = log
	defer h.coord.Fire()

	log.PhaseStart("validate")
	if err := args.Validate(len(h.tc.Servers)); err != nil {
		return 1, err
	}
	server, err := h.tc.Server(args.Server)
	if err != nil {
		return 1, err
	}
	rc.Server = server
	if err := h.tc.SetupEnv(); err != nil {
		return 1, err
	}
	if err := resetDir(h.cfg.GetStoragePath()); err != nil {
		return 1, err
	}

	h.printf("\n=============Running the test cases for '%s'=============\n", server.Name)

	log.PhaseStart("connect")
	rc.DB, err = h.openPrimary(ctx, server)
	if err != nil {
		fmt.Fprintf(h.errOut(), "Error creating the pem database connection with error:\n%s\n", err)
		log.Error("Primary connection failed", "server", server.Name, "error", err)
		return 1, nil
	}
	defer rc.Cleanup()

	if !args.SQLOnly {
		if err := h.createScratchDatabase(ctx, rc); err != nil {
			return 1, err
		}
	}

	raw, err := rc.DB.Version(ctx)
	if err != nil {
		return 1, err
	}
	rc.ServerVersion = raw
	h.printf("(Backend Database Version : %s)\n\n", raw)

	if err := h.prepareApplication(ctx, rc); err != nil {
		return 1, err
	}

	log.PhaseStart("discover")
	disc := discovery.NewDiscoverer(h.registry)
	primary, secondary := disc.Discover(args, h.tc.ServerMode)
	if discovery.NeedsBrowser(args, disc.Excludes(args, h.tc.ServerMode)) {
		if err := h.startBrowser(ctx, rc); err != nil {
			return 1, err
		}
	}
	rc.ServerInfo, err = rc.App.Store().CreateServer(ctx, server, h.tc.ServerGroup)
	if err != nil {
		return 1, fmt.Errorf("create test server node: %w", err)
	}

	displayName := domain.DisplayName(server.Name, rc.ServerVersion)
	report := domain.NewReport()
	details := domain.FailureDetails{}

	if !args.NoSQL {
		log.PhaseStart("sql")
		exec := execution.NewSQLExecutor(h.cfg, rc.DB.DB, h.log)
		exec.SetOutput(h.out())
		exec.Progress = h.stdout == nil
		res, err := exec.Execute(ctx)
		if err != nil {
			return 1, err
		}
		report.SQL[displayName] = res.ToSuiteResult()
		mergeDetails(details, res.Details("sql", displayName))
		log.SuiteFinished("sql", res.Ran, len(res.Failed), len(res.Skipped))
	}

	if !args.SQLOnly {
		fixtures := rc.Fixtures()
		skip := discovery.SkipFunc(h.skipList())
		for _, part := range []struct {
			title   string
			key     string
			modules []suite.Module
			set     domain.ResultSet
		}{
			{"pgAdmin4", "pgadmin", primary, report.PgAdmin},
			{"PEM", "pem", secondary, report.PEM},
		} {
			log.PhaseStart(part.key)
			h.printf("\nExecuting %s test cases\n", part.title)
			if len(part.modules) == 0 {
				h.printf("\nRan 0 tests\n")
				continue
			}
			s, err := suite.Assemble(part.modules, fixtures, skip)
			if err != nil {
				return 1, fmt.Errorf("assemble %s suite: %w", part.title, err)
			}
			res := execution.NewRunner(h.out(), shortVersion(raw), h.log).Run(ctx, s)
			part.set[displayName] = res.ToSuiteResult()
			mergeDetails(details, res.Details(part.key, displayName))
			log.SuiteFinished(part.key, res.Ran, len(res.Failed), len(res.Skipped))
		}
	}

	log.PhaseStart("report")
	if err := h.storage.Save(report); err != nil {
		return 1, err
	}
	if err := h.storage.SaveDetails(details); err != nil {
		log.Warn("Could not save failure details", "error", err)
	}

	log.PhaseStart("teardown")
	h.printf("\n\n=== Dropping the objects created while running the testsuite ===\n")
	h.teardown(ctx, rc)

	formatter := ui.NewFormatter(h.cfg, discovery.NewParser())
	formatter.SetOutput(h.out())
	formatter.PrintSummary(report)

	return report.ExitCode(), nil
}

func (h *Harness) createScratchDatabase(ctx context.Context, rc *RunContext) error {
	maint, err := database.Open(ctx, rc.Server, rc.Server.MaintenanceDB)
	if err != nil {
		return fmt.Errorf("connect to maintenance database: %w", err)
	}
	rc.Maintenance = maint
	name := database.ScratchName(h.rng)
	if err := maint.CreateDatabase(ctx, name); err != nil {
		return err
	}
	rc.DatabaseName = name
	h.log.Info("Created scratch database", "database", name)
	return nil
}

// prepareApplication resets the embedded store, starts the application and
// prepares the PEM objects the suites rely on
func (h *Harness) prepareApplication(ctx context.Context, rc *RunContext) error {
	args := h.cfg.Args
	server := rc.Server
	sqlitePath := h.cfg.GetSQLitePath()
	if err := os.Remove(sqlitePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove application config db: %w", err)
	}

	var err error
	rc.PEM, err = pem.Open(ctx, server)
	if err != nil {
		return fmt.Errorf("init pem connection: %w", err)
	}
	rc.Coverage = app.NewCoverage(args.Coverage, h.cfg.GetCoveragePath())
	if err := rc.Coverage.Start(); err != nil {
		return err
	}

	rc.App, err = app.New(app.Options{
		SQLitePath: sqlitePath,
		ServerMode: h.tc.ServerMode,
		Command:    h.tc.AppCommand,
		URL:        h.tc.AppURL,
		Coverage:   rc.Coverage,
		Log:        h.log,
	})
	if err != nil {
		return err
	}
	if err := rc.App.Upgrade(ctx); err != nil {
		return err
	}

	rc.App.DisableCSRF()
	rc.App.SetCookieDomain("")
	rc.Starter = app.NewStarter(rc.App)
	rc.GUIServerURL, err = rc.Starter.Start(ctx)
	if err != nil {
		return err
	}
	h.coord.Arm(rc.Cleanup)

	rc.Client, err = rc.App.TestClient(&config.LoginCredentials{
		Username: server.Username,
		Password: server.DBPassword,
	})
	if err != nil {
		return err
	}
	if err := pem.LoginTester(ctx, rc.Client); err != nil {
		return err
	}

	rc.FixturePEM, err = pem.Open(ctx, server)
	if err != nil {
		return fmt.Errorf("open pem fixture connection: %w", err)
	}
	rc.Objects = pem.NewObjects(rc.FixturePEM, h.log)
	if _, err := rc.Objects.CreateTestUsers(ctx, server.DBPassword, TestUserCount); err != nil {
		return err
	}
	oid, err := rc.FixturePEM.RoleOID(ctx, server.Username)
	if err != nil {
		return err
	}
	if len(server.DefaultBinaryPaths) > 0 {
		if err := pem.ConfigurePreferences(ctx, rc.App.Store(), server.DefaultBinaryPaths, oid); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) startBrowser(ctx context.Context, rc *RunContext) error {
	name := h.tc.Browser(h.cfg.Args)
	driver, err := browser.NewDriver(ctx, name, h.log)
	if err != nil {
		return err
	}
	rc.Driver = driver

	username, password := "", ""
	if creds := h.tc.LoginCredentials; creds != nil {
		username, password = creds.Username, creds.Password
	}
	return driver.Login(rc.GUIServerURL, username, password)
}

func (h *Harness) teardown(ctx context.Context, rc *RunContext) {
	rc.DropScratchDatabase(ctx)
	rc.DeleteTestServer(ctx)
	msg, err := rc.Coverage.Stop()
	if err != nil {
		rc.log.CleanupFailed("stop coverage", err)
	} else if msg != "" {
		color.New(color.FgCyan).Fprintln(h.out(), msg)
	}
	if err := config.UnsetTestingMode(); err != nil {
		rc.log.CleanupFailed("unset testing mode", err)
	}
}

// skipList combines the configured skip list with the one from the test config
func (h *Harness) skipList() []string {
	list := append([]string(nil), h.cfg.SkippedModules...)
	if h.tc != nil {
		list = append(list, h.tc.SkippedModules...)
	}
	return list
}

func mergeDetails(dst, src domain.FailureDetails) {
	for k, v := range src {
		dst[k] = v
	}
}

// shortVersion reduces a "SELECT VERSION()" banner to its version number
func shortVersion(raw string) string {
	v, err := parser.ParseServerVersion(raw)
	if err != nil {
		return raw
	}
	return v.Original()
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("empty %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
