package ui

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/replayrig/internal/session"
	"github.com/temirov/replayrig/internal/utils"
)

const (
	crashSummaryTemplateConstant  = "Session crashed in %s (boost x%d): %s"
	journalLineSeparatorConstant  = "\n"
	journalPrintTemplateConstant  = "%s\n"
	logFieldCrashCauseConstant    = "crash_cause"
	logFieldBoostCountConstant    = "boost_count"
	logFieldSessionStateConstant  = "session_state"
	unknownCrashSummaryConstant   = "Session crashed"
	emptyJournalRenderingConstant = ""
)

// JournalFormatter builds human-readable messages for journal lines and crashes.
type JournalFormatter struct{}

// BuildLineMessage renders a journal line with its timestamp.
func (formatter JournalFormatter) BuildLineMessage(line session.LogLine) string {
	return line.String()
}

// BuildCrashMessage summarizes a crash and the snapshot it left behind.
func (formatter JournalFormatter) BuildCrashMessage(crash *session.DeterministicCrash, snapshot session.Snapshot) string {
	if crash == nil {
		return unknownCrashSummaryConstant
	}
	return fmt.Sprintf(crashSummaryTemplateConstant, snapshot.State, snapshot.BoostCount, crash.Error())
}

// RenderJournal joins journal lines in order.
func (formatter JournalFormatter) RenderJournal(lines []session.LogLine) string {
	if len(lines) == 0 {
		return emptyJournalRenderingConstant
	}
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, formatter.BuildLineMessage(line))
	}
	return strings.Join(rendered, journalLineSeparatorConstant)
}

// ConsoleJournalLogger forwards session journal events to a zap logger.
type ConsoleJournalLogger struct {
	logger    *zap.Logger
	formatter JournalFormatter
}

// NewConsoleJournalLogger constructs a journal logger backed by the provided zap logger.
func NewConsoleJournalLogger(logger *zap.Logger) *ConsoleJournalLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleJournalLogger{logger: logger, formatter: JournalFormatter{}}
}

// LineAppended implements session.Observer by logging each journal line.
func (journalLogger *ConsoleJournalLogger) LineAppended(line session.LogLine) {
	if journalLogger == nil {
		return
	}
	journalLogger.logger.Info(journalLogger.formatter.BuildLineMessage(line))
}

// Crashed implements session.Observer by logging the crash at error level.
func (journalLogger *ConsoleJournalLogger) Crashed(crash *session.DeterministicCrash, snapshot session.Snapshot) {
	if journalLogger == nil || crash == nil {
		return
	}
	journalLogger.logger.Error(
		journalLogger.formatter.BuildCrashMessage(crash, snapshot),
		zap.String(logFieldCrashCauseConstant, string(crash.Cause)),
		zap.Int(logFieldBoostCountConstant, crash.BoostCount),
		zap.String(logFieldSessionStateConstant, snapshot.State.String()),
	)
}

// JournalPrinter writes journal lines to an output stream as they happen.
type JournalPrinter struct {
	writer    io.Writer
	formatter JournalFormatter
}

// NewJournalPrinter wraps the writer so each line is flushed immediately.
func NewJournalPrinter(writer io.Writer) *JournalPrinter {
	if writer == nil {
		writer = io.Discard
	}
	return &JournalPrinter{writer: utils.NewFlushingWriter(writer), formatter: JournalFormatter{}}
}

// LineAppended implements session.Observer by printing the rendered line.
func (printer *JournalPrinter) LineAppended(line session.LogLine) {
	if printer == nil {
		return
	}
	fmt.Fprintf(printer.writer, journalPrintTemplateConstant, printer.formatter.BuildLineMessage(line))
}

// Crashed implements session.Observer. The crash itself is reported by the caller.
func (printer *JournalPrinter) Crashed(*session.DeterministicCrash, session.Snapshot) {}
