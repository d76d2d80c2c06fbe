package issues

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/replayrig/internal/evidence"
	"github.com/temirov/replayrig/internal/execshell"
	"github.com/temirov/replayrig/internal/githubcli"
	"github.com/temirov/replayrig/internal/utils"
	"github.com/temirov/replayrig/internal/utils/flags"
	pathutils "github.com/temirov/replayrig/internal/utils/path"
)

const (
	commandUseConstant                    = "issue <bug.json>"
	commandShortDescriptionConstant       = "File a GitHub issue for a bug report"
	commandLongDescriptionConstant        = "issue renders a bug report written by chaos as a GitHub issue and files it with the gh CLI. With --dry-run the issue is only printed."
	flagRepositoryNameConstant            = "repo"
	flagRepositoryDescriptionConstant     = "Target repository as owner/name"
	flagLabelNameConstant                 = "label"
	flagLabelDescriptionConstant          = "Issue label (repeatable; replaces configured labels)"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Print the issue instead of filing it"
	reportPathRequiredMessageConstant     = "issue requires exactly one bug report path"
	repositoryRequiredMessageConstant     = "issue requires --repo or tools.issue.repo unless --dry-run is set"
	loadReportErrorTemplateConstant       = "unable to load bug report: %w"
	createIssueErrorTemplateConstant      = "unable to file issue: %w"
	draftOutputTemplateConstant           = "Title: %s\n\n%s"
	dryRunOutputTemplateConstant          = "Dry run: issue not filed (repo %s, labels %v)\n"
	issueFiledOutputTemplateConstant      = "Issue filed: %s (#%d)\n"
	unsetRepositoryConstant               = "<unset>"
	coverageUnavailableLogMessageConstant = "coverage evidence unavailable"
	issueFiledLogMessageConstant          = "issue filed"
	logFieldBugIdentifierConstant         = "bug_id"
	logFieldRepositoryConstant            = "repository"
	logFieldIssueNumberConstant           = "issue_number"
	logFieldIssueURLConstant              = "issue_url"
	logFieldCoveragePathConstant          = "coverage_path"
)

var (
	errReportPathRequired = errors.New(reportPathRequiredMessageConstant)
	errRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the issue command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	FileSystem            evidence.FileSystem
	HomeExpander          *pathutils.HomeExpander
	GitHubExecutor        githubcli.GitHubCommandExecutor
}

// Build constructs the issue command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().String(flagRepositoryNameConstant, defaults.Repository, flagRepositoryDescriptionConstant)
	command.Flags().StringSlice(flagLabelNameConstant, nil, flagLabelDescriptionConstant)
	var dryRun bool
	flags.AddToggleFlag(command.Flags(), &dryRun, flagDryRunNameConstant, "", defaults.DryRun, flagDryRunDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errReportPathRequired
	}

	configuration := builder.parseConfiguration(command)
	logger := builder.resolveLogger()

	store, storeError := evidence.NewStore(builder.resolveFileSystem(), evidence.RunContext{}, logger)
	if storeError != nil {
		return storeError
	}
	reportPath := builder.resolveHomeExpander().Expand(arguments[0])
	report, loadError := store.LoadBugReport(reportPath)
	if loadError != nil {
		return fmt.Errorf(loadReportErrorTemplateConstant, loadError)
	}

	attachments := Attachments{ReportPath: reportPath}
	if len(report.Evidence.CoveragePath) > 0 {
		coverage, coverageError := store.LoadCoverage(report.Evidence.CoveragePath)
		if coverageError != nil {
			logger.Warn(coverageUnavailableLogMessageConstant,
				zap.String(logFieldCoveragePathConstant, report.Evidence.CoveragePath),
				zap.Error(coverageError),
			)
		} else {
			attachments.Coverage = coverage
		}
	}
	draft := Render(report, attachments)

	output := utils.NewFlushingWriter(command.OutOrStdout())
	if configuration.DryRun {
		repository := configuration.Repository
		if len(repository) == 0 {
			repository = unsetRepositoryConstant
		}
		fmt.Fprintf(output, draftOutputTemplateConstant, draft.Title, draft.Body)
		fmt.Fprintf(output, dryRunOutputTemplateConstant, repository, configuration.Labels)
		return nil
	}

	if len(configuration.Repository) == 0 {
		return errRepositoryRequired
	}
	client, clientError := githubcli.NewClient(builder.resolveExecutor(logger))
	if clientError != nil {
		return clientError
	}

	issue, createError := client.CreateIssue(command.Context(), configuration.Repository, githubcli.IssueRequest{
		Title:  draft.Title,
		Body:   draft.Body,
		Labels: configuration.Labels,
	})
	if createError != nil {
		return fmt.Errorf(createIssueErrorTemplateConstant, createError)
	}

	logger.Info(issueFiledLogMessageConstant,
		zap.String(logFieldBugIdentifierConstant, report.ID),
		zap.String(logFieldRepositoryConstant, configuration.Repository),
		zap.Int(logFieldIssueNumberConstant, issue.Number),
		zap.String(logFieldIssueURLConstant, issue.URL),
	)
	fmt.Fprintf(output, issueFiledOutputTemplateConstant, issue.URL, issue.Number)
	return nil
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	commandFlags := command.Flags()
	if commandFlags.Changed(flagRepositoryNameConstant) {
		configuration.Repository, _ = commandFlags.GetString(flagRepositoryNameConstant)
	}
	if commandFlags.Changed(flagLabelNameConstant) {
		configuration.Labels, _ = commandFlags.GetStringSlice(flagLabelNameConstant)
	}
	if dryRunFlag := commandFlags.Lookup(flagDryRunNameConstant); dryRunFlag != nil && dryRunFlag.Changed {
		configuration.DryRun = dryRunFlag.Value.String() == "true"
	}
	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) githubcli.GitHubCommandExecutor {
	if builder.GitHubExecutor != nil {
		return builder.GitHubExecutor
	}
	shellExecutor, _ := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	return shellExecutor
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
