package session

import "fmt"

// BoostOverloadThreshold is the boost count at which FIRE crashes the session.
const BoostOverloadThreshold = 7

const unsupportedActionTemplateConstant = "unsupported action %q"

// Snapshot is the complete session state.
type Snapshot struct {
	State      State
	BoostCount int
}

// InitialSnapshot returns the state a booted session lands in.
func InitialSnapshot() Snapshot {
	return Snapshot{State: StateTitle, BoostCount: 0}
}

// Transition computes the next snapshot for one action. It returns the
// journal messages in emission order and, on a crashing path, a
// *DeterministicCrash alongside the CRASH snapshot. Unknown actions return an
// error and leave the snapshot untouched.
func Transition(current Snapshot, action Action) (Snapshot, []string, error) {
	switch action {
	case ActionStart:
		next := Snapshot{State: StatePlay, BoostCount: 0}
		return next, []string{stateEntryMessage(next.State)}, nil
	case ActionBack:
		next := Snapshot{State: StateTitle, BoostCount: current.BoostCount}
		return next, []string{stateEntryMessage(next.State)}, nil
	case ActionReset:
		next := Snapshot{State: StateTitle, BoostCount: 0}
		return next, []string{resetMessageConstant, stateEntryMessage(next.State)}, nil
	case ActionCrashRequest:
		next := Snapshot{State: StateCrash, BoostCount: current.BoostCount}
		return next, []string{stateEntryMessage(next.State)}, newManualCrash(current.BoostCount)
	case ActionBoost:
		return transitionBoost(current)
	case ActionFire:
		return transitionFire(current)
	default:
		return current, nil, fmt.Errorf(unsupportedActionTemplateConstant, action)
	}
}

func transitionBoost(current Snapshot) (Snapshot, []string, error) {
	if current.State != StatePlay {
		return current, []string{boostIgnoredMessageConstant}, nil
	}
	next := Snapshot{State: StatePlay, BoostCount: current.BoostCount + 1}
	return next, []string{fmt.Sprintf(boostMessageTemplateConstant, next.BoostCount)}, nil
}

func transitionFire(current Snapshot) (Snapshot, []string, error) {
	if current.State != StatePlay {
		return current, []string{fireIgnoredMessageConstant}, nil
	}
	if current.BoostCount < BoostOverloadThreshold {
		return current, []string{fireMessageConstant, fireFizzleMessageConstant}, nil
	}
	next := Snapshot{State: StateCrash, BoostCount: current.BoostCount}
	return next, []string{fireMessageConstant, stateEntryMessage(next.State)}, newOverloadCrash(current.BoostCount)
}
