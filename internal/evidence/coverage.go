package evidence

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/temirov/replayrig/internal/session"
)

const transitionKeySeparatorConstant = ":"

// Coverage counts which states were visited and which actions were tried
// from each state.
type Coverage struct {
	expectedStates []session.State
	stateVisits    map[session.State]int
	transitions    map[string]int
}

// TransitionKey names one (state, action) pair counted by a Coverage.
type TransitionKey struct {
	State  session.State
	Action session.Action
}

// String renders the key as "STATE:ACTION".
func (key TransitionKey) String() string {
	return key.State.String() + transitionKeySeparatorConstant + key.Action.String()
}

// CoverageSummary is a compact view of a Coverage.
type CoverageSummary struct {
	VisitedStates []session.State `json:"visited_states"`
	MissingStates []session.State `json:"missing_states"`
	StateRatio    float64         `json:"state_ratio"`
	ActionsTried  int             `json:"actions_tried"`
	DistinctPairs int             `json:"distinct_pairs"`
}

type coverageDocument struct {
	ExpectedStates []session.State       `json:"expected_states"`
	StateVisits    map[session.State]int `json:"state_visits"`
	Transitions    map[string]int        `json:"transitions"`
	Summary        CoverageSummary       `json:"summary"`
}

// NewCoverage tracks the three session states.
func NewCoverage() *Coverage {
	return &Coverage{
		expectedStates: []session.State{session.StateTitle, session.StatePlay, session.StateCrash},
		stateVisits:    map[session.State]int{},
		transitions:    map[string]int{},
	}
}

// ObserveState counts a visit to state.
func (coverage *Coverage) ObserveState(state session.State) {
	coverage.stateVisits[state]++
}

// ObserveOutcome counts the (state, action) pair and the state it led to.
func (coverage *Coverage) ObserveOutcome(outcome session.Outcome) {
	coverage.transitions[TransitionKey{State: outcome.Previous.State, Action: outcome.Action}.String()]++
	coverage.ObserveState(outcome.Next.State)
}

// StateVisits returns how often state was observed.
func (coverage *Coverage) StateVisits(state session.State) int {
	return coverage.stateVisits[state]
}

// TransitionCount returns how often action was dispatched from state.
func (coverage *Coverage) TransitionCount(state session.State, action session.Action) int {
	return coverage.transitions[TransitionKey{State: state, Action: action}.String()]
}

// Summary reports visited and missing states and action totals.
func (coverage *Coverage) Summary() CoverageSummary {
	summary := CoverageSummary{VisitedStates: []session.State{}, MissingStates: []session.State{}}
	for _, state := range coverage.expectedStates {
		if coverage.stateVisits[state] > 0 {
			summary.VisitedStates = append(summary.VisitedStates, state)
		} else {
			summary.MissingStates = append(summary.MissingStates, state)
		}
	}
	if len(coverage.expectedStates) > 0 {
		summary.StateRatio = float64(len(summary.VisitedStates)) / float64(len(coverage.expectedStates))
	}
	for _, count := range coverage.transitions {
		summary.ActionsTried += count
	}
	summary.DistinctPairs = len(coverage.transitions)
	return summary
}

// TransitionKeys lists observed pairs sorted by their "STATE:ACTION" text.
func (coverage *Coverage) TransitionKeys() []TransitionKey {
	rawKeys := make([]string, 0, len(coverage.transitions))
	for rawKey := range coverage.transitions {
		rawKeys = append(rawKeys, rawKey)
	}
	sort.Strings(rawKeys)

	keys := make([]TransitionKey, 0, len(rawKeys))
	for _, rawKey := range rawKeys {
		state, action, _ := strings.Cut(rawKey, transitionKeySeparatorConstant)
		keys = append(keys, TransitionKey{State: session.State(state), Action: session.Action(action)})
	}
	return keys
}

// MarshalJSON encodes the counters together with their summary.
func (coverage *Coverage) MarshalJSON() ([]byte, error) {
	return json.Marshal(coverageDocument{
		ExpectedStates: coverage.expectedStates,
		StateVisits:    coverage.stateVisits,
		Transitions:    coverage.transitions,
		Summary:        coverage.Summary(),
	})
}

// UnmarshalJSON restores counters written by MarshalJSON. The summary is
// recomputed rather than trusted.
func (coverage *Coverage) UnmarshalJSON(data []byte) error {
	var document coverageDocument
	if decodeError := json.Unmarshal(data, &document); decodeError != nil {
		return decodeError
	}

	restored := NewCoverage()
	if len(document.ExpectedStates) > 0 {
		restored.expectedStates = document.ExpectedStates
	}
	for state, visits := range document.StateVisits {
		restored.stateVisits[session.State(strings.ToUpper(state.String()))] = visits
	}
	for key, count := range document.Transitions {
		restored.transitions[key] = count
	}
	*coverage = *restored
	return nil
}
