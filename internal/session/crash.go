package session

import (
	"errors"
	"fmt"
)

const (
	crashMessagePrefixConstant           = "DEMO_CRASH: "
	manualCrashMessageConstant           = crashMessagePrefixConstant + "manual crash button clicked"
	overloadCrashMessageTemplateConstant = crashMessagePrefixConstant + "START -> BOOST x%d -> FIRE"
	sessionAbortedMessageConstant        = "session aborted after crash; no further actions accepted"
	crashCauseManualStringConstant       = "manual"
	crashCauseOverloadStringConstant     = "overload"
	unknownCrashMessageConstant          = crashMessagePrefixConstant + "unknown cause"
	nilCrashMessageConstant              = "<nil>"
)

// ErrSessionAborted is returned when an action is dispatched to a session that already crashed.
var ErrSessionAborted = errors.New(sessionAbortedMessageConstant)

// CrashCause identifies which path raised a DeterministicCrash.
type CrashCause string

// Supported crash causes.
const (
	CrashCauseManual   CrashCause = CrashCause(crashCauseManualStringConstant)
	CrashCauseOverload CrashCause = CrashCause(crashCauseOverloadStringConstant)
)

// DeterministicCrash is the single failure the state machine raises. It is
// reproducible from the action sequence that produced it.
type DeterministicCrash struct {
	Cause      CrashCause
	BoostCount int
	Message    string
}

func newManualCrash(boostCount int) *DeterministicCrash {
	return &DeterministicCrash{
		Cause:      CrashCauseManual,
		BoostCount: boostCount,
		Message:    manualCrashMessageConstant,
	}
}

func newOverloadCrash(boostCount int) *DeterministicCrash {
	return &DeterministicCrash{
		Cause:      CrashCauseOverload,
		BoostCount: boostCount,
		Message:    fmt.Sprintf(overloadCrashMessageTemplateConstant, boostCount),
	}
}

// Error returns the crash message. A nil crash renders as "<nil>".
func (crash *DeterministicCrash) Error() string {
	if crash == nil {
		return nilCrashMessageConstant
	}
	if len(crash.Message) == 0 {
		return unknownCrashMessageConstant
	}
	return crash.Message
}

// AsDeterministicCrash extracts a DeterministicCrash from an error chain.
func AsDeterministicCrash(err error) (*DeterministicCrash, bool) {
	var crash *DeterministicCrash
	if !errors.As(err, &crash) {
		return nil, false
	}
	return crash, true
}
