package chaos

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/replayrig/internal/detection"
	"github.com/temirov/replayrig/internal/evidence"
	"github.com/temirov/replayrig/internal/session"
	"github.com/temirov/replayrig/internal/workflow"
)

const (
	// DefaultSteps bounds a run when neither steps nor duration is given.
	DefaultSteps = 16
	// DefaultSeed is the seed the chaos command uses when none is configured.
	DefaultSeed int64 = 13
	// DefaultStepDelay paces macros.
	DefaultStepDelay = 80 * time.Millisecond

	evidenceLabelConstant         = "chaos-trigger"
	storeRequiredMessageConstant  = "chaos agent requires an evidence store to write reports"
	macroFailedTemplateConstant   = "chaos step %d (%s) failed: %w"
	evidenceWriteTemplateConstant = "unable to write chaos evidence: %w"
	runStartedLogMessageConstant  = "chaos run started"
	stepLogMessageConstant        = "chaos step"
	bugDetectedLogMessageConstant = "chaos bug detected"
	runFinishedLogMessageConstant = "chaos run finished without bugs"
	logFieldRunIdentifierConstant = "run_id"
	logFieldStepConstant          = "step"
	logFieldMacroConstant         = "macro"
	logFieldStateConstant         = "state"
	logFieldSeedConstant          = "seed"
	logFieldDetectorConstant      = "detector"
	logFieldReasonConstant        = "reason"
	logFieldReportPathConstant    = "report_path"
	logFieldActionsTakenConstant  = "actions_taken"
	logFieldCrashReasonsConstant  = "crash_reasons"
)

// ErrStoreRequired indicates a run asked to write a report without a store.
var ErrStoreRequired = errors.New(storeRequiredMessageConstant)

// Options bounds and seeds one run. A run stops after Steps macros or once
// Duration has elapsed, whichever comes first; zero disables a bound. Seed is
// used as given, so zero is a valid seed.
type Options struct {
	Steps                int
	Duration             time.Duration
	Seed                 int64
	StepDelay            time.Duration
	WriteReport          bool
	MaxSameSnapshotSteps int
	FatalPatterns        []string
}

// Dependencies configures collaborators of the agent.
type Dependencies struct {
	Logger *zap.Logger
	Store  *evidence.Store
	Clock  session.Clock
	Sleep  func(ctx context.Context, delay time.Duration) error
	Macros []Macro
}

// Result describes a finished run. Report is nil when no bug was found.
type Result struct {
	RunID         string
	Report        *evidence.BugReport
	BugReportPath string
	CoveragePath  string
	ActionsTaken  []string
	Coverage      *evidence.Coverage
}

// Agent executes chaos runs.
type Agent struct {
	dependencies Dependencies
}

// NewAgent constructs an Agent, filling unset dependencies with defaults.
func NewAgent(dependencies Dependencies) *Agent {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Clock == nil {
		dependencies.Clock = time.Now
	}
	if dependencies.Sleep == nil {
		dependencies.Sleep = sleepContext
	}
	if len(dependencies.Macros) == 0 {
		dependencies.Macros = DefaultMacros()
	}
	return &Agent{dependencies: dependencies}
}

// Run plays macros against a fresh session until a detector reports a
// reason, the bounds are reached, or ctx is cancelled.
func (agent *Agent) Run(executionContext context.Context, options Options) (Result, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if options.WriteReport && agent.dependencies.Store == nil {
		return Result{}, ErrStoreRequired
	}
	options = normalizeOptions(options)

	crashDetector := detection.NewCrashDetector(options.FatalPatterns)
	hangDetector := detection.NewHangDetector(options.MaxSameSnapshotSteps)
	coverage := evidence.NewCoverage()
	random := rand.New(rand.NewSource(options.Seed))

	targetSession := session.NewSession(session.Options{
		Clock:     agent.dependencies.Clock,
		Observers: []session.Observer{newDetectorObserver(crashDetector)},
	})
	coverage.ObserveState(targetSession.State())

	var dispatchedActions []session.Action
	executor, executorError := workflow.NewExecutor(targetSession, workflow.Dependencies{
		Logger: agent.dependencies.Logger,
		ActionListener: func(outcome session.Outcome) {
			dispatchedActions = append(dispatchedActions, outcome.Action)
			coverage.ObserveOutcome(outcome)
		},
	})
	if executorError != nil {
		return Result{}, executorError
	}

	result := Result{RunID: agent.runIdentifier(), Coverage: coverage}
	logger := agent.dependencies.Logger.With(zap.String(logFieldRunIdentifierConstant, result.RunID))
	logger.Info(runStartedLogMessageConstant, zap.Int64(logFieldSeedConstant, options.Seed))

	startedAt := agent.dependencies.Clock()
	macros := agent.dependencies.Macros
	for stepIndex := 0; options.Steps <= 0 || stepIndex < options.Steps; stepIndex++ {
		if options.Duration > 0 && agent.dependencies.Clock().Sub(startedAt) >= options.Duration {
			break
		}
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}

		label, steps := macros[stepIndex%len(macros)].Plan(random)
		result.ActionsTaken = append(result.ActionsTaken, label)

		_, executeError := executor.Execute(executionContext, steps)
		if executeError != nil {
			crash, isCrash := session.AsDeterministicCrash(executeError)
			if !isCrash {
				return result, fmt.Errorf(macroFailedTemplateConstant, stepIndex+1, label, executeError)
			}
			crashDetector.ObserveError(crash)
		}

		hangDetector.Observe(targetSession.Snapshot())
		logger.Debug(stepLogMessageConstant,
			zap.Int(logFieldStepConstant, stepIndex+1),
			zap.String(logFieldMacroConstant, label),
			zap.String(logFieldStateConstant, targetSession.State().String()),
		)

		detectorName, reason, detected := firstReason(crashDetector, hangDetector)
		if !detected {
			if sleepError := agent.dependencies.Sleep(executionContext, options.StepDelay); sleepError != nil {
				return result, sleepError
			}
			continue
		}

		report := evidence.BugReport{
			ID:         evidence.NewBugID(),
			RunID:      result.RunID,
			Detector:   detectorName,
			Reason:     reason,
			LastState:  evidence.NewStateEvidence(targetSession.Snapshot(), evidenceLabelConstant),
			ReproSteps: append([]string{}, result.ActionsTaken...),
			Actions:    append([]session.Action{}, dispatchedActions...),
			Journal:    renderJournal(targetSession.Journal()),
			Seed:       options.Seed,
			CreatedAt:  agent.dependencies.Clock().UTC(),
		}
		if options.WriteReport {
			if writeError := agent.writeEvidence(&result, &report); writeError != nil {
				return result, fmt.Errorf(evidenceWriteTemplateConstant, writeError)
			}
		}
		result.Report = &report

		logger.Warn(bugDetectedLogMessageConstant,
			zap.String(logFieldDetectorConstant, detectorName),
			zap.String(logFieldReasonConstant, reason),
			zap.String(logFieldReportPathConstant, result.BugReportPath),
			zap.Strings(logFieldActionsTakenConstant, result.ActionsTaken),
			zap.Strings(logFieldCrashReasonsConstant, crashDetector.Reasons()),
		)
		return result, nil
	}

	if options.WriteReport {
		coveragePath, coverageError := agent.dependencies.Store.SaveCoverage(coverage)
		if coverageError != nil {
			return result, fmt.Errorf(evidenceWriteTemplateConstant, coverageError)
		}
		result.CoveragePath = coveragePath
	}
	logger.Info(runFinishedLogMessageConstant, zap.Strings(logFieldActionsTakenConstant, result.ActionsTaken))
	return result, nil
}

func (agent *Agent) runIdentifier() string {
	if agent.dependencies.Store != nil {
		return agent.dependencies.Store.RunContext().RunID
	}
	return evidence.NewRunContext("").RunID
}

func (agent *Agent) writeEvidence(result *Result, report *evidence.BugReport) error {
	store := agent.dependencies.Store

	statePath, stateError := store.SaveStateEvidence(evidenceLabelConstant, report.LastState)
	if stateError != nil {
		return stateError
	}
	coveragePath, coverageError := store.SaveCoverage(result.Coverage)
	if coverageError != nil {
		return coverageError
	}
	report.Evidence = evidence.BugEvidence{StatePath: statePath, CoveragePath: coveragePath}

	reportPath, reportError := store.SaveBugReport(*report)
	if reportError != nil {
		return reportError
	}
	result.CoveragePath = coveragePath
	result.BugReportPath = reportPath
	return nil
}

func firstReason(crashDetector *detection.CrashDetector, hangDetector *detection.HangDetector) (string, string, bool) {
	if reason, found := crashDetector.Check(); found {
		return detection.CrashDetectorName, reason, true
	}
	if reason, found := hangDetector.Check(); found {
		return detection.HangDetectorName, reason, true
	}
	return "", "", false
}

func normalizeOptions(options Options) Options {
	if options.Steps <= 0 && options.Duration <= 0 {
		options.Steps = DefaultSteps
	}
	if options.StepDelay < 0 {
		options.StepDelay = 0
	}
	return options
}

func renderJournal(lines []session.LogLine) []string {
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, line.String())
	}
	return rendered
}

func sleepContext(executionContext context.Context, delay time.Duration) error {
	if delay <= 0 {
		return executionContext.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-executionContext.Done():
		return executionContext.Err()
	case <-timer.C:
		return nil
	}
}

type detectorObserver struct {
	crashDetector *detection.CrashDetector
}

func newDetectorObserver(crashDetector *detection.CrashDetector) *detectorObserver {
	return &detectorObserver{crashDetector: crashDetector}
}

func (observer *detectorObserver) LineAppended(line session.LogLine) {
	observer.crashDetector.ObserveLine(line.Message)
}

func (observer *detectorObserver) Crashed(*session.DeterministicCrash, session.Snapshot) {}
