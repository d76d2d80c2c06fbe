package chaos

import (
	"fmt"
	"math/rand"

	"github.com/temirov/replayrig/internal/session"
	"github.com/temirov/replayrig/internal/workflow"
)

const (
	macroStartLabelConstant           = "START"
	macroBoostSevenLabelConstant      = "BOOST x7"
	macroFireLabelConstant            = "FIRE"
	macroRapidBurstLabelConstant      = "RAPID BOOST BURST"
	macroRandomActionLabelConstant    = "RANDOM ACTION"
	macroEscapeBackLabelConstant      = "ESCAPE/BACK"
	macroRandomActionTemplateConstant = "RANDOM ACTION: %s"
	macroBoostSevenRepeatConstant     = 7
	macroRapidBurstRepeatConstant     = 6
)

// Macro is one named adversarial move expanded into workflow steps.
type Macro struct {
	Label string
	plan  func(random *rand.Rand) (string, []workflow.Step)
}

// Plan resolves the macro into its recorded label and steps. Only RANDOM
// ACTION consumes randomness.
func (macro Macro) Plan(random *rand.Rand) (string, []workflow.Step) {
	return macro.plan(random)
}

func fixedMacro(label string, action session.Action, repeat int) Macro {
	return NewMacro(label, []workflow.Step{{Action: action, Repeat: repeat}})
}

// RandomCandidates lists the actions RANDOM ACTION may pick: every action
// except CRASH_REQUEST, so random play never files the manual crash.
func RandomCandidates() []session.Action {
	candidates := make([]session.Action, 0, len(session.Actions()))
	for _, action := range session.Actions() {
		if action != session.ActionCrashRequest {
			candidates = append(candidates, action)
		}
	}
	return candidates
}

// DefaultMacros returns the macro cycle in execution order.
func DefaultMacros() []Macro {
	candidates := RandomCandidates()
	return []Macro{
		fixedMacro(macroStartLabelConstant, session.ActionStart, 1),
		fixedMacro(macroBoostSevenLabelConstant, session.ActionBoost, macroBoostSevenRepeatConstant),
		fixedMacro(macroFireLabelConstant, session.ActionFire, 1),
		fixedMacro(macroRapidBurstLabelConstant, session.ActionBoost, macroRapidBurstRepeatConstant),
		{
			Label: macroRandomActionLabelConstant,
			plan: func(random *rand.Rand) (string, []workflow.Step) {
				action := candidates[random.Intn(len(candidates))]
				return fmt.Sprintf(macroRandomActionTemplateConstant, action), []workflow.Step{{Action: action, Repeat: 1}}
			},
		},
		fixedMacro(macroEscapeBackLabelConstant, session.ActionBack, 1),
	}
}

// NewMacro builds a macro that always plays the same steps.
func NewMacro(label string, steps []workflow.Step) Macro {
	planned := append([]workflow.Step{}, steps...)
	return Macro{
		Label: label,
		plan: func(*rand.Rand) (string, []workflow.Step) {
			return label, planned
		},
	}
}
