package replay

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/replayrig/internal/detection"
	"github.com/temirov/replayrig/internal/evidence"
	"github.com/temirov/replayrig/internal/session"
	"github.com/temirov/replayrig/internal/workflow"
)

const (
	notReproducedMessageConstant     = "bug did not reproduce"
	unknownDetectorTemplateConstant  = "unsupported detector %q"
	replayFailedTemplateConstant     = "replay failed: %w"
	noCrashObservationConstant       = "no crash"
	replayFinishedLogMessageConstant = "replay finished"
	logFieldBugIdentifierConstant    = "bug_id"
	logFieldReproducedConstant       = "reproduced"
	logFieldObservedConstant         = "observed"
)

// ErrNotReproduced indicates the replayed actions did not fail the same way.
var ErrNotReproduced = errors.New(notReproducedMessageConstant)

// Verdict is the outcome of one replay.
type Verdict struct {
	Reproduced      bool
	Expected        string
	Observed        string
	Snapshot        session.Snapshot
	ActionsExecuted int
	Journal         []session.LogLine
}

// Service replays bug reports.
type Service struct {
	logger *zap.Logger
	clock  session.Clock
}

// NewService constructs a Service. A nil logger disables logging and a nil
// clock uses wall time.
func NewService(logger *zap.Logger, clock session.Clock) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, clock: clock}
}

// Replay validates report, feeds its actions to a fresh session and compares
// the result with the recorded reason. Crash reports reproduce when the same
// crash message is raised; hang reports reproduce when no crash happens and
// the session ends in the recorded snapshot.
func (service *Service) Replay(executionContext context.Context, report evidence.BugReport) (Verdict, error) {
	if validationError := report.Validate(); validationError != nil {
		return Verdict{}, validationError
	}

	targetSession := session.NewSession(session.Options{Clock: service.clock})
	executor, executorError := workflow.NewExecutor(targetSession, workflow.Dependencies{Logger: service.logger})
	if executorError != nil {
		return Verdict{}, executorError
	}

	result, executeError := executor.Execute(executionContext, workflow.StepsFromActions(report.Actions))
	if executeError != nil && result.Crash == nil {
		return Verdict{}, fmt.Errorf(replayFailedTemplateConstant, executeError)
	}

	verdict := Verdict{
		Observed:        noCrashObservationConstant,
		Snapshot:        result.Snapshot,
		ActionsExecuted: result.ActionsExecuted,
		Journal:         targetSession.Journal(),
	}
	if result.Crash != nil {
		verdict.Observed = result.Crash.Error()
	}

	switch report.Detector {
	case detection.CrashDetectorName:
		expectedMessage, isException := detection.ExceptionMessage(report.Reason)
		if isException {
			verdict.Expected = expectedMessage
			verdict.Reproduced = result.Crash != nil && result.Crash.Error() == expectedMessage
		} else {
			verdict.Expected = report.Reason
			verdict.Reproduced = result.Crash != nil
		}
	case detection.HangDetectorName:
		expectedSnapshot := session.Snapshot{State: report.LastState.State, BoostCount: report.LastState.BoostCount}
		verdict.Expected = report.Reason
		verdict.Reproduced = result.Crash == nil && result.Snapshot == expectedSnapshot
	default:
		return Verdict{}, fmt.Errorf(unknownDetectorTemplateConstant, report.Detector)
	}

	service.logger.Info(replayFinishedLogMessageConstant,
		zap.String(logFieldBugIdentifierConstant, report.ID),
		zap.Bool(logFieldReproducedConstant, verdict.Reproduced),
		zap.String(logFieldObservedConstant, verdict.Observed),
	)
	return verdict, nil
}
