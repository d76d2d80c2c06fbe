package console

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/temirov/replayrig/internal/session"
	"github.com/temirov/replayrig/internal/ui"
)

const (
	// DefaultLogLines is the number of journal lines shown when none is configured.
	DefaultLogLines = 8

	titleTextConstant              = "REPLAYRIG DEMO"
	meterFilledCellConstant        = "■"
	meterEmptyCellConstant         = "□"
	meterTemplateConstant          = "BOOST %s %d/%d"
	legendEntryTemplateConstant    = "%s %s"
	legendSeparatorConstant        = "  "
	dispatchFailedTemplateConstant = "%s rejected: %v"
	sectionSeparatorConstant       = "\n\n"
)

// Model is the Bubble Tea model wrapping one demo session.
type Model struct {
	session  *session.Session
	logLines int
	crash    *session.DeterministicCrash
	status   string
	quitting bool
}

// NewModel wraps target. A non-positive logLines uses DefaultLogLines.
func NewModel(target *session.Session, logLines int) *Model {
	if logLines <= 0 {
		logLines = DefaultLogLines
	}
	return &Model{session: target, logLines: logLines}
}

// Init implements tea.Model.
func (model *Model) Init() tea.Cmd {
	return nil
}

// Update dispatches bound keys to the session. A crash is recorded and ends
// the program.
func (model *Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	keyMessage, isKey := message.(tea.KeyMsg)
	if !isKey {
		return model, nil
	}

	key := keyMessage.String()
	if isQuitKey(key) {
		model.quitting = true
		return model, tea.Quit
	}

	action, bound := ActionForKey(key)
	if !bound {
		return model, nil
	}

	_, dispatchError := model.session.Dispatch(action)
	if dispatchError == nil {
		model.status = ""
		return model, nil
	}

	var crash *session.DeterministicCrash
	if errors.As(dispatchError, &crash) {
		model.crash = crash
		return model, tea.Quit
	}
	model.status = fmt.Sprintf(dispatchFailedTemplateConstant, action, dispatchError)
	return model, nil
}

// View renders the screen.
func (model *Model) View() string {
	snapshot := model.session.Snapshot()

	sections := []string{titleStyle.Render(titleTextConstant) + legendSeparatorConstant + stateBadge(snapshot.State)}
	if snapshot.State == session.StatePlay {
		sections = append(sections, renderBoostMeter(snapshot.BoostCount))
	}
	sections = append(sections, renderLegend(), journalStyle.Render(model.renderJournalTail()))

	if model.crash != nil {
		sections = append(sections, crashStyle.Render(ui.JournalFormatter{}.BuildCrashMessage(model.crash, snapshot)))
	} else if len(model.status) > 0 {
		sections = append(sections, statusStyle.Render(model.status))
	}

	return strings.Join(sections, sectionSeparatorConstant) + "\n"
}

// Crash returns the crash that ended the program, if any.
func (model *Model) Crash() *session.DeterministicCrash {
	return model.crash
}

// Quitting reports whether the user asked to leave.
func (model *Model) Quitting() bool {
	return model.quitting
}

// Snapshot returns the wrapped session's snapshot.
func (model *Model) Snapshot() session.Snapshot {
	return model.session.Snapshot()
}

func (model *Model) renderJournalTail() string {
	journal := model.session.Journal()
	if len(journal) > model.logLines {
		journal = journal[len(journal)-model.logLines:]
	}
	return ui.JournalFormatter{}.RenderJournal(journal)
}

func renderBoostMeter(boostCount int) string {
	filledCells := min(boostCount, session.BoostOverloadThreshold)
	meter := meterFilledStyle.Render(strings.Repeat(meterFilledCellConstant, filledCells)) +
		meterEmptyStyle.Render(strings.Repeat(meterEmptyCellConstant, session.BoostOverloadThreshold-filledCells))
	return fmt.Sprintf(meterTemplateConstant, meter, boostCount, session.BoostOverloadThreshold)
}

func renderLegend() string {
	entries := make([]string, 0, len(KeyBindings())+1)
	for _, binding := range KeyBindings() {
		entries = append(entries, fmt.Sprintf(legendEntryTemplateConstant, keyStyle.Render(binding.Key), legendLabelStyle.Render(binding.Action.String())))
	}
	entries = append(entries, fmt.Sprintf(legendEntryTemplateConstant, keyStyle.Render(keyQuitLabelConstant), legendLabelStyle.Render(quitLegendLabelConstant)))
	return strings.Join(entries, legendSeparatorConstant)
}
