package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/temirov/replayrig/internal/session"
	"github.com/temirov/replayrig/internal/ui"
)

const (
	programFailedTemplateConstant  = "console failed: %w"
	sessionEndedLogMessageConstant = "console session ended"
	logFieldStateConstant          = "state"
	logFieldBoostCountConstant     = "boost_count"
	logFieldJournalLinesConstant   = "journal_lines"
	logFieldQuitRequestedConstant  = "quit_requested"
)

// Options configures one interactive session.
type Options struct {
	LogLines int
	Logger   *zap.Logger
	Clock    session.Clock
	// Input and Output default to the terminal when nil.
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// Run starts a fresh session under a Bubble Tea program and blocks until the
// user quits, the context is cancelled or the session crashes. The crash is
// returned as a *session.DeterministicCrash.
func Run(executionContext context.Context, options Options) error {
	if executionContext == nil {
		executionContext = context.Background()
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	targetSession := session.NewSession(session.Options{
		Clock:     options.Clock,
		Observers: []session.Observer{ui.NewConsoleJournalLogger(logger)},
	})
	model := NewModel(targetSession, options.LogLines)

	programOptions := []tea.ProgramOption{tea.WithContext(executionContext)}
	if options.Input != nil {
		programOptions = append(programOptions, tea.WithInput(options.Input))
	}
	if options.Output != nil {
		programOptions = append(programOptions, tea.WithOutput(options.Output))
	}
	if options.AltScreen {
		programOptions = append(programOptions, tea.WithAltScreen())
	}

	_, programError := tea.NewProgram(model, programOptions...).Run()

	snapshot := model.Snapshot()
	logger.Debug(sessionEndedLogMessageConstant,
		zap.String(logFieldStateConstant, snapshot.State.String()),
		zap.Int(logFieldBoostCountConstant, snapshot.BoostCount),
		zap.Int(logFieldJournalLinesConstant, len(targetSession.Journal())),
		zap.Bool(logFieldQuitRequestedConstant, model.Quitting()),
	)

	if crash := model.Crash(); crash != nil {
		return crash
	}
	if programError != nil {
		if errors.Is(programError, tea.ErrProgramKilled) && executionContext.Err() != nil {
			return executionContext.Err()
		}
		return fmt.Errorf(programFailedTemplateConstant, programError)
	}
	return nil
}
