package console

import "github.com/temirov/replayrig/internal/session"

const (
	keyStartConstant        = "s"
	keyBoostConstant        = "b"
	keyFireConstant         = "f"
	keyResetConstant        = "r"
	keyCrashRequestConstant = "x"
	keyEscapeConstant       = "esc"
	keyBackspaceConstant    = "backspace"
	keyQuitConstant         = "q"
	keyInterruptConstant    = "ctrl+c"
	keyBackLabelConstant    = "esc"
	keyQuitLabelConstant    = "q"
	quitLegendLabelConstant = "QUIT"
)

// KeyBinding pairs a key with the action it dispatches.
type KeyBinding struct {
	Key    string
	Action session.Action
}

// KeyBindings lists the action keys in legend order.
func KeyBindings() []KeyBinding {
	return []KeyBinding{
		{Key: keyStartConstant, Action: session.ActionStart},
		{Key: keyBoostConstant, Action: session.ActionBoost},
		{Key: keyFireConstant, Action: session.ActionFire},
		{Key: keyBackLabelConstant, Action: session.ActionBack},
		{Key: keyResetConstant, Action: session.ActionReset},
		{Key: keyCrashRequestConstant, Action: session.ActionCrashRequest},
	}
}

var keyActions = map[string]session.Action{
	keyStartConstant:        session.ActionStart,
	keyBoostConstant:        session.ActionBoost,
	keyFireConstant:         session.ActionFire,
	keyResetConstant:        session.ActionReset,
	keyCrashRequestConstant: session.ActionCrashRequest,
	keyEscapeConstant:       session.ActionBack,
	keyBackspaceConstant:    session.ActionBack,
}

// ActionForKey resolves a key press to an action.
func ActionForKey(key string) (session.Action, bool) {
	action, bound := keyActions[key]
	return action, bound
}

func isQuitKey(key string) bool {
	return key == keyQuitConstant || key == keyInterruptConstant
}
