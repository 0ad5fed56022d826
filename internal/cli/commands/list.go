package commands

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"regress/internal/config"
	"regress/internal/discovery"
	"regress/internal/registry"
	"regress/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config     *config.Config
	discoverer *discovery.Discoverer
	scanner    *discovery.Scanner
	filter     *discovery.Filter
	formatter  *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	reg *registry.Registry,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		config:     cfg,
		discoverer: discovery.NewDiscoverer(reg),
		scanner:    scanner,
		filter:     filter,
		formatter:  formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	tc, err := loadTestConfig(lc.config, true)
	if err != nil {
		return err
	}

	primary, secondary := lc.discoverer.Discover(lc.config.Args, tc.ServerMode)
	lc.formatter.PrintModuleList(primary, secondary, lc.config.Args.Generators)

	testPath := lc.config.GetSQLTestPath()
	if _, err := os.Stat(testPath); os.IsNotExist(err) {
		color.Yellow("No SQL test directory at %s", testPath)
		return nil
	}
	tests, err := lc.scanner.Scan(testPath)
	if err != nil {
		return err
	}

	// Filter tests
	tests = lc.filter.FilterByName(tests, lc.config.Args.SQLFilter)

	if len(tests) == 0 {
		color.Yellow("No SQL tests found")
		return nil
	}

	return lc.formatter.PrintSQLTestList(tests, lc.config.Args.TestCases)
}
