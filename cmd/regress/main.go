package main

import (
	"errors"
	"fmt"
	"os"

	"regress/internal/cli"
	"regress/internal/cli/commands"
	"regress/internal/config"
	"regress/internal/harness"

	// Registers the test modules
	_ "regress/internal/generators"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "regress",
		Short:         "Regression test harness for the pgAdmin4 and PEM web console",
		Long:          `Runs the SQL, pgAdmin4 and PEM regression suites against one configured backend server and writes a JSON report of the results.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		var exitErr *harness.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
