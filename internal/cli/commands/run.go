package commands

import (
	"regress/internal/config"
	"regress/internal/harness"
	"regress/internal/registry"
	"regress/internal/storage"

	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config   *config.Config
	registry *registry.Registry
	storage  storage.Storage
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, reg *registry.Registry, st storage.Storage) *RunCommand {
	return &RunCommand{
		config:   cfg,
		registry: reg,
		storage:  st,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	tc, err := loadTestConfig(rc.config, false)
	if err != nil {
		return err
	}

	h := harness.New(harness.Options{
		Config:     rc.config,
		TestConfig: tc,
		Registry:   rc.registry,
		Storage:    rc.storage,
	})
	code, err := h.Run(cmd.Context())
	if err != nil {
		return &harness.ExitError{Code: 1, Err: err}
	}
	if code != 0 {
		return &harness.ExitError{Code: code}
	}
	return nil
}
