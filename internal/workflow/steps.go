package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/replayrig/internal/session"
)

const (
	defaultRepeatCountConstant             = 1
	stepLabelRepeatTemplateConstant        = "%s x%d"
	stepBuildErrorTemplateConstant         = "workflow step %d: %w"
	stepOptionsDecodeErrorTemplateConstant = "invalid options: %w"
	invalidRepeatTemplateConstant          = "repeat must be at least 1, got %d"
	danglingRepeatTemplateConstant         = "repeat %q has no preceding action"
	argumentErrorTemplateConstant          = "argument %q: %w"
	repeatSeparatorAsteriskConstant        = "*"
	noArgumentsMessageConstant             = "no actions provided"
)

// ErrNoArguments indicates ParseArguments received no action tokens.
var ErrNoArguments = errors.New(noArgumentsMessageConstant)

var repeatTokenPattern = regexp.MustCompile(`^(?i)[x*](\d+)$`)

// Step is one scripted action applied Repeat times in a row.
type Step struct {
	Action session.Action
	Repeat int
}

// StepOptions holds the decoded "with" block of a script step.
type StepOptions struct {
	Repeat int `mapstructure:"repeat"`
}

// Label renders the step the way it is written in scripts, e.g. "BOOST x7".
func (step Step) Label() string {
	if step.Repeat <= defaultRepeatCountConstant {
		return step.Action.String()
	}
	return fmt.Sprintf(stepLabelRepeatTemplateConstant, step.Action, step.Repeat)
}

// Actions expands the step into the individual actions it dispatches.
func (step Step) Actions() []session.Action {
	repeat := step.Repeat
	if repeat < defaultRepeatCountConstant {
		repeat = defaultRepeatCountConstant
	}
	actions := make([]session.Action, 0, repeat)
	for index := 0; index < repeat; index++ {
		actions = append(actions, step.Action)
	}
	return actions
}

// FlattenSteps expands every step into one ordered action list.
func FlattenSteps(steps []Step) []session.Action {
	actions := make([]session.Action, 0, len(steps))
	for _, step := range steps {
		actions = append(actions, step.Actions()...)
	}
	return actions
}

// StepsFromActions wraps each action in a single-dispatch step.
func StepsFromActions(actions []session.Action) []Step {
	steps := make([]Step, 0, len(actions))
	for _, action := range actions {
		steps = append(steps, Step{Action: action, Repeat: defaultRepeatCountConstant})
	}
	return steps
}

// BuildSteps validates the configured actions and decodes their options.
func BuildSteps(configuration Configuration) ([]Step, error) {
	if len(configuration.Steps) == 0 {
		return nil, ErrEmptyConfiguration
	}

	steps := make([]Step, 0, len(configuration.Steps))
	for stepIndex, stepConfiguration := range configuration.Steps {
		step, buildError := buildStep(stepConfiguration)
		if buildError != nil {
			return nil, fmt.Errorf(stepBuildErrorTemplateConstant, stepIndex+1, buildError)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func buildStep(stepConfiguration StepConfiguration) (Step, error) {
	action, parseError := session.ParseAction(stepConfiguration.Action)
	if parseError != nil {
		return Step{}, parseError
	}

	options := StepOptions{Repeat: defaultRepeatCountConstant}
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &options,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if decoderError != nil {
		return Step{}, decoderError
	}
	if decodeError := decoder.Decode(stepConfiguration.Options); decodeError != nil {
		return Step{}, fmt.Errorf(stepOptionsDecodeErrorTemplateConstant, decodeError)
	}

	if options.Repeat < defaultRepeatCountConstant {
		return Step{}, fmt.Errorf(invalidRepeatTemplateConstant, options.Repeat)
	}

	return Step{Action: action, Repeat: options.Repeat}, nil
}

// ParseArguments turns command-line tokens into steps. Accepted spellings
// include "START", "BOOST*7", "boost x7" (one quoted argument) and
// "boost" "x7" (two arguments).
func ParseArguments(arguments []string) ([]Step, error) {
	steps := make([]Step, 0, len(arguments))
	for _, argument := range arguments {
		for _, token := range strings.Fields(argument) {
			if repeatMatch := repeatTokenPattern.FindStringSubmatch(token); repeatMatch != nil {
				if len(steps) == 0 {
					return nil, fmt.Errorf(danglingRepeatTemplateConstant, token)
				}
				repeat, repeatError := parseRepeat(repeatMatch[1])
				if repeatError != nil {
					return nil, fmt.Errorf(argumentErrorTemplateConstant, token, repeatError)
				}
				steps[len(steps)-1].Repeat = repeat
				continue
			}

			step, stepError := parseActionToken(token)
			if stepError != nil {
				return nil, fmt.Errorf(argumentErrorTemplateConstant, token, stepError)
			}
			steps = append(steps, step)
		}
	}

	if len(steps) == 0 {
		return nil, ErrNoArguments
	}
	return steps, nil
}

func parseActionToken(token string) (Step, error) {
	actionPart, repeatPart, hasRepeat := strings.Cut(token, repeatSeparatorAsteriskConstant)

	action, parseError := session.ParseAction(actionPart)
	if parseError != nil {
		return Step{}, parseError
	}
	if !hasRepeat {
		return Step{Action: action, Repeat: defaultRepeatCountConstant}, nil
	}

	repeat, repeatError := parseRepeat(repeatPart)
	if repeatError != nil {
		return Step{}, repeatError
	}
	return Step{Action: action, Repeat: repeat}, nil
}

func parseRepeat(raw string) (int, error) {
	repeat, conversionError := strconv.Atoi(strings.TrimSpace(raw))
	if conversionError != nil {
		return 0, conversionError
	}
	if repeat < defaultRepeatCountConstant {
		return 0, fmt.Errorf(invalidRepeatTemplateConstant, repeat)
	}
	return repeat, nil
}
