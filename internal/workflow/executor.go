package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/replayrig/internal/session"
)

const (
	executorSessionRequiredMessageConstant = "workflow executor requires a session"
	stepCrashedErrorTemplateConstant       = "workflow step %d (%s) crashed: %w"
	stepFailedErrorTemplateConstant        = "workflow step %d (%s) failed: %w"
	executionCancelledTemplateConstant     = "workflow cancelled before step %d: %w"
	stepStartedLogMessageConstant          = "workflow step started"
	stepCrashedLogMessageConstant          = "workflow step crashed"
	stateChangedLogMessageConstant         = "workflow state changed"
	previousStateFieldConstant             = "previous_state"
	executionCompletedLogMessageConstant   = "workflow completed"
	stepIndexFieldConstant                 = "step"
	stepLabelFieldConstant                 = "label"
	stateFieldConstant                     = "state"
	boostCountFieldConstant                = "boost_count"
	actionsExecutedFieldConstant           = "actions_executed"
)

// ErrSessionRequired indicates NewExecutor received a nil session.
var ErrSessionRequired = errors.New(executorSessionRequiredMessageConstant)

// ActionListener is notified after every dispatched action, including the
// one that crashes the session.
type ActionListener func(outcome session.Outcome)

// Dependencies configures shared collaborators for script execution.
type Dependencies struct {
	Logger         *zap.Logger
	ActionListener ActionListener
}

// Result summarizes one execution.
type Result struct {
	Snapshot        session.Snapshot
	StepsExecuted   int
	ActionsExecuted int
	Crash           *session.DeterministicCrash
}

// Executor dispatches steps against one session.
type Executor struct {
	session      *session.Session
	dependencies Dependencies
}

// NewExecutor constructs an Executor bound to targetSession.
func NewExecutor(targetSession *session.Session, dependencies Dependencies) (*Executor, error) {
	if targetSession == nil {
		return nil, ErrSessionRequired
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Executor{session: targetSession, dependencies: dependencies}, nil
}

// Execute dispatches each step's actions in order. It stops at the first
// crash and returns it wrapped with the step position; the Result still
// describes everything executed up to and including the crashing action.
// Cancellation is checked between actions.
func (executor *Executor) Execute(executionContext context.Context, steps []Step) (Result, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	result := Result{Snapshot: executor.session.Snapshot()}
	for stepIndex, step := range steps {
		stepNumber := stepIndex + 1
		executor.dependencies.Logger.Debug(stepStartedLogMessageConstant,
			zap.Int(stepIndexFieldConstant, stepNumber),
			zap.String(stepLabelFieldConstant, step.Label()),
		)
		result.StepsExecuted = stepNumber

		for _, action := range step.Actions() {
			if contextError := executionContext.Err(); contextError != nil {
				return result, fmt.Errorf(executionCancelledTemplateConstant, stepNumber, contextError)
			}

			outcome, dispatchError := executor.session.Dispatch(action)
			result.Snapshot = executor.session.Snapshot()
			if dispatchError == nil || outcome.Crash != nil {
				result.ActionsExecuted++
				if outcome.StateChanged() {
					executor.dependencies.Logger.Debug(stateChangedLogMessageConstant,
						zap.Int(stepIndexFieldConstant, stepNumber),
						zap.String(previousStateFieldConstant, outcome.Previous.State.String()),
						zap.String(stateFieldConstant, outcome.Next.State.String()),
					)
				}
				if executor.dependencies.ActionListener != nil {
					executor.dependencies.ActionListener(outcome)
				}
			}

			if dispatchError == nil {
				continue
			}

			if crash, isCrash := session.AsDeterministicCrash(dispatchError); isCrash {
				result.Crash = crash
				executor.dependencies.Logger.Warn(stepCrashedLogMessageConstant,
					zap.Int(stepIndexFieldConstant, stepNumber),
					zap.String(stepLabelFieldConstant, step.Label()),
					zap.Int(boostCountFieldConstant, crash.BoostCount),
					zap.Error(crash),
				)
				return result, fmt.Errorf(stepCrashedErrorTemplateConstant, stepNumber, step.Label(), crash)
			}
			return result, fmt.Errorf(stepFailedErrorTemplateConstant, stepNumber, step.Label(), dispatchError)
		}
	}

	executor.dependencies.Logger.Debug(executionCompletedLogMessageConstant,
		zap.String(stateFieldConstant, result.Snapshot.State.String()),
		zap.Int(boostCountFieldConstant, result.Snapshot.BoostCount),
		zap.Int(actionsExecutedFieldConstant, result.ActionsExecuted),
	)
	return result, nil
}
