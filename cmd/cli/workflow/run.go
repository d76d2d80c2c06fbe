package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/replayrig/internal/session"
	"github.com/temirov/replayrig/internal/ui"
	"github.com/temirov/replayrig/internal/workflow"
)

const (
	commandUseConstant                     = "run [actions...]"
	commandShortDescriptionConstant        = "Drive a session from actions or a script file"
	commandLongDescriptionConstant         = "run boots a session, dispatches the given actions (for example START BOOST*7 FIRE) or the steps of a YAML script in order, and prints the journal. A crash ends the run with a non-zero exit status."
	scriptFlagNameConstant                 = "script"
	scriptFlagDescriptionConstant          = "Path to a YAML script with steps to execute"
	actionsRequiredMessageConstant         = "run requires actions or --script"
	conflictingSourcesMessageConstant      = "run accepts either positional actions or --script, not both"
	loadConfigurationErrorTemplateConstant = "unable to load workflow script: %w"
	buildStepsErrorTemplateConstant        = "unable to build workflow steps: %w"
	parseArgumentsErrorTemplateConstant    = "unable to parse actions: %w"
	runCompletedLogMessageConstant         = "run completed"
	scriptLoadingLogMessageConstant        = "loading workflow script"
	runScriptFieldConstant                 = "script"
	runStateFieldConstant                  = "state"
	runActionsFieldConstant                = "actions_executed"
	runPlannedActionsFieldConstant         = "actions_planned"
)

var (
	errActionsRequired    = errors.New(actionsRequiredMessageConstant)
	errConflictingSources = errors.New(conflictingSourcesMessageConstant)
)

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	Clock                 session.Clock
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(scriptFlagNameConstant, "", scriptFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	steps, stepsError := builder.resolveSteps(command, arguments)
	if stepsError != nil {
		return stepsError
	}

	logger := resolveLogger(builder.LoggerProvider)
	targetSession := session.NewSession(session.Options{
		Clock: builder.Clock,
		Observers: []session.Observer{
			ui.NewJournalPrinter(command.OutOrStdout()),
			ui.NewConsoleJournalLogger(logger),
		},
	})

	executor, executorError := workflow.NewExecutor(targetSession, workflow.Dependencies{Logger: logger})
	if executorError != nil {
		return executorError
	}

	result, executeError := executor.Execute(command.Context(), steps)
	logger.Info(runCompletedLogMessageConstant,
		zap.String(runStateFieldConstant, result.Snapshot.State.String()),
		zap.Int(runActionsFieldConstant, result.ActionsExecuted),
		zap.Int(runPlannedActionsFieldConstant, len(workflow.FlattenSteps(steps))),
	)
	return executeError
}

func (builder *CommandBuilder) resolveSteps(command *cobra.Command, arguments []string) ([]workflow.Step, error) {
	scriptPath := builder.resolveConfiguration().Script
	if command.Flags().Changed(scriptFlagNameConstant) {
		scriptValue, _ := command.Flags().GetString(scriptFlagNameConstant)
		scriptPath = strings.TrimSpace(scriptValue)
	}

	switch {
	case len(scriptPath) > 0 && len(arguments) > 0:
		return nil, errConflictingSources
	case len(scriptPath) > 0:
		resolveLogger(builder.LoggerProvider).Debug(scriptLoadingLogMessageConstant, zap.String(runScriptFieldConstant, scriptPath))
		configuration, configurationError := workflow.LoadConfiguration(scriptPath)
		if configurationError != nil {
			return nil, fmt.Errorf(loadConfigurationErrorTemplateConstant, configurationError)
		}
		steps, buildError := workflow.BuildSteps(configuration)
		if buildError != nil {
			return nil, fmt.Errorf(buildStepsErrorTemplateConstant, buildError)
		}
		return steps, nil
	case len(arguments) > 0:
		steps, parseError := workflow.ParseArguments(arguments)
		if parseError != nil {
			return nil, fmt.Errorf(parseArgumentsErrorTemplateConstant, parseError)
		}
		return steps, nil
	default:
		if helpError := displayCommandHelp(command); helpError != nil {
			return nil, helpError
		}
		return nil, errActionsRequired
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
