package console

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/replayrig/internal/session"
	pathutils "github.com/temirov/replayrig/internal/utils/path"
)

const (
	commandUseConstant                 = "play"
	commandShortDescriptionConstant    = "Play the demo interactively in the terminal"
	commandLongDescriptionConstant     = "play opens the demo in the terminal. s starts, b boosts, f fires, esc goes back, r resets and x requests a crash; q quits. Firing with a boost of 7 or more crashes the session and the command exits with status 1."
	flagLogLinesNameConstant           = "log-lines"
	flagLogLinesDescriptionConstant    = "Number of journal lines shown below the controls"
	flagLogFileNameConstant            = "log-file"
	flagLogFileDescriptionConstant     = "Write logs to this file instead of discarding them while the screen is in use"
	unexpectedArgumentsMessageConstant = "play does not accept positional arguments"
	logFileOpenErrorTemplateConstant   = "unable to open log file %s: %w"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// FileLoggerFactory opens a logger writing to path.
type FileLoggerFactory func(path string) (*zap.Logger, error)

// CommandBuilder assembles the play command.
type CommandBuilder struct {
	FileLoggerFactory     FileLoggerFactory
	ConfigurationProvider func() CommandConfiguration
	HomeExpander          *pathutils.HomeExpander
	Clock                 session.Clock
	Input                 io.Reader
	Output                io.Writer
}

// Build constructs the play command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().Int(flagLogLinesNameConstant, defaults.LogLines, flagLogLinesDescriptionConstant)
	command.Flags().String(flagLogFileNameConstant, defaults.LogFile, flagLogFileDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.parseConfiguration(command)
	logger, loggerError := builder.resolveLogger(configuration.LogFile)
	if loggerError != nil {
		return loggerError
	}
	defer func() {
		_ = logger.Sync()
	}()

	return Run(command.Context(), Options{
		LogLines:  configuration.LogLines,
		Logger:    logger,
		Clock:     builder.Clock,
		Input:     builder.Input,
		Output:    builder.Output,
		AltScreen: configuration.AltScreen && builder.Output == nil,
	})
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	commandFlags := command.Flags()
	if commandFlags.Changed(flagLogLinesNameConstant) {
		configuration.LogLines, _ = commandFlags.GetInt(flagLogLinesNameConstant)
	}
	if commandFlags.Changed(flagLogFileNameConstant) {
		configuration.LogFile, _ = commandFlags.GetString(flagLogFileNameConstant)
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveLogger(logFile string) (*zap.Logger, error) {
	if len(logFile) == 0 || builder.FileLoggerFactory == nil {
		return zap.NewNop(), nil
	}

	expander := builder.HomeExpander
	if expander == nil {
		expander = pathutils.NewHomeExpander()
	}
	logPath := expander.Expand(logFile)
	logger, loggerError := builder.FileLoggerFactory(logPath)
	if loggerError != nil {
		return nil, fmt.Errorf(logFileOpenErrorTemplateConstant, logPath, loggerError)
	}
	if logger == nil {
		return zap.NewNop(), nil
	}
	return logger, nil
}
