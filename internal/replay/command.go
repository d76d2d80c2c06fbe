package replay

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/replayrig/internal/evidence"
	"github.com/temirov/replayrig/internal/session"
	"github.com/temirov/replayrig/internal/ui"
	"github.com/temirov/replayrig/internal/utils"
)

const (
	commandUseConstant                 = "replay <bug.json>"
	commandShortDescriptionConstant    = "Replay a bug report and verify it reproduces"
	commandLongDescriptionConstant     = "replay loads a bug report written by chaos, dispatches its recorded actions against a fresh session and fails unless the recorded crash or hang happens again."
	flagShowJournalNameConstant        = "show-journal"
	flagShowJournalDescriptionConstant = "Print the replayed session journal"
	reportPathRequiredMessageConstant  = "replay requires exactly one bug report path"
	loadReportErrorTemplateConstant    = "unable to load bug report: %w"
	reproducedOutputTemplateConstant   = "Reproduced %s: %s\n"
	notReproducedErrorTemplateConstant = "%w: expected %q, observed %q"
	journalHeaderOutputConstant        = "Journal:\n"
	journalLineOutputTemplateConstant  = "  %s\n"
)

var errReportPathRequired = errors.New(reportPathRequiredMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the replay command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	FileSystem            evidence.FileSystem
	Clock                 session.Clock
}

// Build constructs the replay command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}
	command.Flags().Bool(flagShowJournalNameConstant, DefaultCommandConfiguration().ShowJournal, flagShowJournalDescriptionConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errReportPathRequired
	}

	logger := builder.resolveLogger()
	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = evidence.OSFileSystem{}
	}
	store, storeError := evidence.NewStore(fileSystem, evidence.RunContext{}, logger)
	if storeError != nil {
		return storeError
	}

	report, loadError := store.LoadBugReport(arguments[0])
	if loadError != nil {
		return fmt.Errorf(loadReportErrorTemplateConstant, loadError)
	}

	verdict, replayError := NewService(logger, builder.Clock).Replay(command.Context(), report)
	if replayError != nil {
		return replayError
	}

	output := utils.NewFlushingWriter(command.OutOrStdout())
	if builder.showJournal(command) {
		fmt.Fprint(output, journalHeaderOutputConstant)
		for _, line := range verdict.Journal {
			fmt.Fprintf(output, journalLineOutputTemplateConstant, ui.JournalFormatter{}.BuildLineMessage(line))
		}
	}

	if !verdict.Reproduced {
		return fmt.Errorf(notReproducedErrorTemplateConstant, ErrNotReproduced, verdict.Expected, verdict.Observed)
	}
	fmt.Fprintf(output, reproducedOutputTemplateConstant, report.ID, verdict.Observed)
	return nil
}

func (builder *CommandBuilder) showJournal(command *cobra.Command) bool {
	if command.Flags().Changed(flagShowJournalNameConstant) {
		showJournal, _ := command.Flags().GetBool(flagShowJournalNameConstant)
		return showJournal
	}
	if builder.ConfigurationProvider != nil {
		return builder.ConfigurationProvider().ShowJournal
	}
	return DefaultCommandConfiguration().ShowJournal
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
