package commands

import (
	"github.com/spf13/cobra"
	"regress/internal/config"
	"regress/internal/storage"
	"regress/internal/ui"
)

// SummaryCommand handles the summary command
type SummaryCommand struct {
	config    *config.Config
	storage   storage.Storage
	formatter *ui.Formatter
}

// NewSummaryCommand creates a new SummaryCommand
func NewSummaryCommand(cfg *config.Config, st storage.Storage, formatter *ui.Formatter) *SummaryCommand {
	return &SummaryCommand{
		config:    cfg,
		storage:   st,
		formatter: formatter,
	}
}

// Execute runs the command
func (sc *SummaryCommand) Execute(cmd *cobra.Command, args []string) error {
	report, err := sc.storage.Load()
	if err != nil {
		return err
	}

	sc.formatter.PrintSummary(report)
	return nil
}
