package chaos

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/replayrig/internal/evidence"
	"github.com/temirov/replayrig/internal/utils"
	"github.com/temirov/replayrig/internal/utils/flags"
	pathutils "github.com/temirov/replayrig/internal/utils/path"
)

const (
	commandUseConstant                    = "chaos"
	commandShortDescriptionConstant       = "Play adversarial macros until a crash or hang is found"
	commandLongDescriptionConstant        = "chaos cycles START, BOOST x7, FIRE, RAPID BOOST BURST, RANDOM ACTION and ESCAPE/BACK against a fresh session. The first crash or hang is written as a bug report and the command exits with status 2."
	flagStepsNameConstant                 = "steps"
	flagStepsDescriptionConstant          = "Maximum number of macros to play (0 for no limit when --duration is set)"
	flagDurationNameConstant              = "duration"
	flagDurationDescriptionConstant       = "Maximum wall-clock duration of the run (0 for no limit)"
	flagSeedNameConstant                  = "seed"
	flagSeedDescriptionConstant           = "Seed for RANDOM ACTION picks (0 is a valid seed)"
	flagStepDelayNameConstant             = "step-delay"
	flagStepDelayDescriptionConstant      = "Pause between macros"
	flagArtifactsNameConstant             = "artifacts"
	flagArtifactsDescriptionConstant      = "Directory receiving bug reports, state evidence and coverage"
	flagWriteReportNameConstant           = "write-report"
	flagWriteReportDescriptionConstant    = "Write bug reports and evidence to the artifacts directory"
	unexpectedArgumentsMessageConstant    = "chaos does not accept positional arguments"
	bugDetectedExitCodeConstant           = 2
	bugDetectedErrorTemplateConstant      = "chaos detected a bug (%s): %s"
	bugSavedOutputTemplateConstant        = "Bug detected and saved: %s\n"
	bugDetectedOutputTemplateConstant     = "Bug detected: %s\n"
	noBugOutputConstant                   = "No bug detected during chaos run\n"
	coverageOutputTemplateConstant        = "Coverage: %d/%d states, %d actions\n"
	transitionsHeaderOutputConstant       = "Transitions:"
	transitionOutputTemplateConstant      = " %s=%d"
	commandExecutionErrorTemplateConstant = "chaos run failed: %w"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// BugDetectedError reports that a run found a bug. Its exit code is 2.
type BugDetectedError struct {
	Detector   string
	Reason     string
	ReportPath string
}

// Error describes the detected bug.
func (bugError *BugDetectedError) Error() string {
	return fmt.Sprintf(bugDetectedErrorTemplateConstant, bugError.Detector, bugError.Reason)
}

// ExitCode returns the process exit status for a detected bug.
func (bugError *BugDetectedError) ExitCode() int {
	return bugDetectedExitCodeConstant
}

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the chaos command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	FileSystem            evidence.FileSystem
	HomeExpander          *pathutils.HomeExpander
	Dependencies          Dependencies
}

// Build constructs the chaos command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().Int(flagStepsNameConstant, defaults.Steps, flagStepsDescriptionConstant)
	command.Flags().Duration(flagDurationNameConstant, defaults.Duration, flagDurationDescriptionConstant)
	command.Flags().Int64(flagSeedNameConstant, defaults.Seed, flagSeedDescriptionConstant)
	command.Flags().Duration(flagStepDelayNameConstant, defaults.StepDelay, flagStepDelayDescriptionConstant)
	command.Flags().String(flagArtifactsNameConstant, defaults.ArtifactsRoot, flagArtifactsDescriptionConstant)
	var writeReport bool
	flags.AddToggleFlag(command.Flags(), &writeReport, flagWriteReportNameConstant, "", defaults.WriteReport, flagWriteReportDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.parseConfiguration(command)
	logger := builder.resolveLogger()

	runIdentifier, _ := utils.NewCommandContextAccessor().RunIdentifier(command.Context())
	runContext := evidence.NewRunContextWithID(runIdentifier, builder.resolveHomeExpander().Expand(configuration.ArtifactsRoot))
	store, storeError := evidence.NewStore(builder.resolveFileSystem(), runContext, logger)
	if storeError != nil {
		return storeError
	}

	dependencies := builder.Dependencies
	dependencies.Logger = logger
	dependencies.Store = store
	agent := NewAgent(dependencies)

	result, runError := agent.Run(command.Context(), Options{
		Steps:                configuration.Steps,
		Duration:             configuration.Duration,
		Seed:                 configuration.Seed,
		StepDelay:            configuration.StepDelay,
		WriteReport:          configuration.WriteReport,
		MaxSameSnapshotSteps: configuration.MaxSameSnapshotSteps,
		FatalPatterns:        configuration.FatalPatterns,
	})
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	output := utils.NewFlushingWriter(command.OutOrStdout())
	summary := result.Coverage.Summary()
	fmt.Fprintf(output, coverageOutputTemplateConstant, len(summary.VisitedStates), len(summary.VisitedStates)+len(summary.MissingStates), summary.ActionsTried)
	writeTransitions(output, result.Coverage)

	if result.Report == nil {
		fmt.Fprint(output, noBugOutputConstant)
		return nil
	}

	if len(result.BugReportPath) > 0 {
		fmt.Fprintf(output, bugSavedOutputTemplateConstant, result.BugReportPath)
	} else {
		fmt.Fprintf(output, bugDetectedOutputTemplateConstant, result.Report.Reason)
	}
	return &BugDetectedError{Detector: result.Report.Detector, Reason: result.Report.Reason, ReportPath: result.BugReportPath}
}

func writeTransitions(output io.Writer, coverage *evidence.Coverage) {
	transitionKeys := coverage.TransitionKeys()
	if len(transitionKeys) == 0 {
		return
	}
	fmt.Fprint(output, transitionsHeaderOutputConstant)
	for _, transitionKey := range transitionKeys {
		fmt.Fprintf(output, transitionOutputTemplateConstant, transitionKey, coverage.TransitionCount(transitionKey.State, transitionKey.Action))
	}
	fmt.Fprintln(output)
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().Sanitize()
	}

	commandFlags := command.Flags()
	if commandFlags.Changed(flagStepsNameConstant) {
		configuration.Steps, _ = commandFlags.GetInt(flagStepsNameConstant)
	}
	if commandFlags.Changed(flagDurationNameConstant) {
		configuration.Duration, _ = commandFlags.GetDuration(flagDurationNameConstant)
	}
	if commandFlags.Changed(flagSeedNameConstant) {
		configuration.Seed, _ = commandFlags.GetInt64(flagSeedNameConstant)
	}
	if commandFlags.Changed(flagStepDelayNameConstant) {
		configuration.StepDelay, _ = commandFlags.GetDuration(flagStepDelayNameConstant)
	}
	if commandFlags.Changed(flagArtifactsNameConstant) {
		configuration.ArtifactsRoot, _ = commandFlags.GetString(flagArtifactsNameConstant)
	}
	if writeReportFlag := commandFlags.Lookup(flagWriteReportNameConstant); writeReportFlag != nil && writeReportFlag.Changed {
		configuration.WriteReport = writeReportFlag.Value.String() == "true"
	}
	return configuration
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

func (builder *CommandBuilder) resolveFileSystem() evidence.FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return evidence.OSFileSystem{}
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander != nil {
		return builder.HomeExpander
	}
	return pathutils.NewHomeExpander()
}
