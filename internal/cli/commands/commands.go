package commands

import (
	"errors"
	"fmt"
	"os"

	"regress/internal/cli"
	"regress/internal/config"
	"regress/internal/discovery"
	"regress/internal/registry"
	"regress/internal/storage"
	"regress/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	List    *ListCommand
	Report  *ReportCommand
	Summary *SummaryCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	// Initialize dependencies
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	filter := discovery.NewFilter()
	testCaseParser := discovery.NewParser()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg, testCaseParser)
	viewer := ui.NewReportViewer(jsonStorage)

	return &Commands{
		Run:     NewRunCommand(cfg, registry.Default, jsonStorage),
		List:    NewListCommand(cfg, registry.Default, scanner, filter, formatter),
		Report:  NewReportCommand(cfg, jsonStorage, viewer),
		Summary: NewSummaryCommand(cfg, jsonStorage, formatter),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		cfg.Apply(flags.ToArguments())
		return nil
	}
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Path to test_config.json (default <project>/test_config.json)")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the regression suites against one server",
		Long:    "Prepare the application and backend, run the SQL, pgAdmin4 and PEM suites and write the JSON report",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().IntVarP(&flags.Server, "server", "s", 0, "1-based index of the server in server_credentials")
	addSelectionFlags(runCmd.Flags(), flags)
	runCmd.Flags().BoolVar(&flags.SQLOnly, "sqlonly", false, "Run the SQL suite only, skip GUI packages")
	runCmd.Flags().BoolVar(&flags.NoSQL, "nosql", false, "Skip the SQL suite")
	runCmd.Flags().StringVar(&flags.DefaultBrowser, "default_browser", "", "Browser for feature tests (chrome, headless)")
	runCmd.Flags().BoolVar(&flags.Coverage, "coverage", false, "Collect application coverage")
	_ = runCmd.MarkFlagRequired("server")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered test modules and SQL tests",
		Long:    "Discover test modules and SQL test files without running anything",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	addSelectionFlags(listCmd.Flags(), flags)
	listCmd.Flags().BoolVarP(&flags.Generators, "generators", "g", false, "List generators of each module")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List SQL test cases instead of files only")
	rootCmd.AddCommand(listCmd)

	// Report command
	reportCmd := &cobra.Command{
		Use:     "report",
		Short:   "View failures of the last run interactively",
		Long:    "Display the failed cases of the last JSON report in an interactive viewer",
		RunE:    c.Report.Execute,
		PreRunE: applyFlags,
	}
	rootCmd.AddCommand(reportCmd)

	// Summary command
	summaryCmd := &cobra.Command{
		Use:     "summary",
		Short:   "Print the summary of the last run",
		RunE:    c.Summary.Execute,
		PreRunE: applyFlags,
	}
	rootCmd.AddCommand(summaryCmd)
}

// addSelectionFlags adds the flags that select modules and SQL files
func addSelectionFlags(fs *pflag.FlagSet, flags *cli.Flags) {
	fs.StringVar(&flags.Pkg, "pkg", config.AllPackages, "Package below the root, e.g. browser.server_groups")
	fs.StringVar(&flags.Exclude, "exclude", "", "Comma separated packages to exclude")
	fs.StringVarP(&flags.SQLFilter, "filter", "f", "", "Filter SQL test files by name pattern (supports wildcards, e.g. '*roles*')")
}

// loadTestConfig reads the test configuration. With optional set a missing
// file yields an empty configuration.
func loadTestConfig(cfg *config.Config, optional bool) (*config.TestConfig, error) {
	path := cfg.GetConfigPath()
	if _, err := os.Stat(path); optional && errors.Is(err, os.ErrNotExist) {
		return &config.TestConfig{}, nil
	}
	tc, err := config.LoadTestConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}
	cfg.ApplyTestConfig(tc)
	return tc, nil
}
