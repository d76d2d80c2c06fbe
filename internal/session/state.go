package session

import (
	"errors"
	"fmt"
	"strings"
)

const (
	stateTitleStringConstant         = "TITLE"
	statePlayStringConstant          = "PLAY"
	stateCrashStringConstant         = "CRASH"
	actionStartStringConstant        = "START"
	actionBackStringConstant         = "BACK"
	actionResetStringConstant        = "RESET"
	actionCrashRequestStringConstant = "CRASH_REQUEST"
	actionBoostStringConstant        = "BOOST"
	actionFireStringConstant         = "FIRE"
	actionCrashAliasConstant         = "CRASH"
	actionWordSeparatorConstant      = "_"
	emptyActionMessageConstant       = "action must be provided"
	unknownActionTemplateConstant    = "unknown action %q"
)

// ErrEmptyAction indicates ParseAction received blank input.
var ErrEmptyAction = errors.New(emptyActionMessageConstant)

// State identifies the screen the session is showing.
type State string

// Supported states.
const (
	StateTitle State = State(stateTitleStringConstant)
	StatePlay  State = State(statePlayStringConstant)
	StateCrash State = State(stateCrashStringConstant)
)

// String returns the screen label.
func (state State) String() string {
	return string(state)
}

// Action names a single external input event.
type Action string

// The action alphabet.
const (
	ActionStart        Action = Action(actionStartStringConstant)
	ActionBack         Action = Action(actionBackStringConstant)
	ActionReset        Action = Action(actionResetStringConstant)
	ActionCrashRequest Action = Action(actionCrashRequestStringConstant)
	ActionBoost        Action = Action(actionBoostStringConstant)
	ActionFire         Action = Action(actionFireStringConstant)
)

var actionAlphabet = []Action{
	ActionStart,
	ActionBack,
	ActionReset,
	ActionCrashRequest,
	ActionBoost,
	ActionFire,
}

var actionAliases = map[string]Action{
	actionCrashAliasConstant: ActionCrashRequest,
}

// String returns the action name.
func (action Action) String() string {
	return string(action)
}

// Valid reports whether the action belongs to the alphabet.
func (action Action) Valid() bool {
	for _, candidate := range actionAlphabet {
		if candidate == action {
			return true
		}
	}
	return false
}

// Actions returns the full action alphabet in declaration order.
func Actions() []Action {
	return append([]Action{}, actionAlphabet...)
}

// ParseAction resolves user-supplied text to an Action. Matching ignores case
// and treats spaces and dashes as underscores; "CRASH" is accepted for
// CRASH_REQUEST.
func ParseAction(rawAction string) (Action, error) {
	trimmedAction := strings.TrimSpace(rawAction)
	if len(trimmedAction) == 0 {
		return "", ErrEmptyAction
	}

	normalizedAction := strings.ToUpper(trimmedAction)
	normalizedAction = strings.NewReplacer("-", actionWordSeparatorConstant, " ", actionWordSeparatorConstant).Replace(normalizedAction)

	if aliasedAction, aliasExists := actionAliases[normalizedAction]; aliasExists {
		return aliasedAction, nil
	}

	candidateAction := Action(normalizedAction)
	if !candidateAction.Valid() {
		return "", fmt.Errorf(unknownActionTemplateConstant, trimmedAction)
	}

	return candidateAction, nil
}
