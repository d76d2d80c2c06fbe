package session

import (
	"errors"
	"time"
)

// Observer receives journal lines and the crash signal synchronously, in the
// order the session produces them.
type Observer interface {
	LineAppended(line LogLine)
	Crashed(crash *DeterministicCrash, snapshot Snapshot)
}

// Options configures a Session.
type Options struct {
	Clock     Clock
	Observers []Observer
}

// Outcome describes one applied action.
type Outcome struct {
	Action   Action
	Previous Snapshot
	Next     Snapshot
	Lines    []LogLine
	Crash    *DeterministicCrash
}

// StateChanged reports whether the action moved the session to another screen.
func (outcome Outcome) StateChanged() bool {
	return outcome.Previous.State != outcome.Next.State
}

// Session owns the snapshot and journal of one running demo. It is not safe
// for concurrent use.
type Session struct {
	clock     Clock
	observers []Observer
	snapshot  Snapshot
	journal   []LogLine
	crash     *DeterministicCrash
}

// NewSession boots a session: it journals "Booted" and performs RESET, leaving
// the session in TITLE with a zero boost count.
func NewSession(options Options) *Session {
	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}

	observers := make([]Observer, 0, len(options.Observers))
	for _, observer := range options.Observers {
		if observer != nil {
			observers = append(observers, observer)
		}
	}

	session := &Session{
		clock:     clock,
		observers: observers,
		snapshot:  InitialSnapshot(),
	}

	session.appendLines(stampLines(session.clock, []string{bootedMessageConstant}))
	_, _ = session.Dispatch(ActionReset)

	return session
}

// Dispatch applies one action. On a crashing path the snapshot is moved to
// CRASH and the lines are journaled and observed before the
// *DeterministicCrash is returned. Once crashed, the session rejects further
// actions with ErrSessionAborted.
func (session *Session) Dispatch(action Action) (Outcome, error) {
	if session.crash != nil {
		return Outcome{}, ErrSessionAborted
	}

	previous := session.snapshot
	next, messages, transitionError := Transition(previous, action)

	var crash *DeterministicCrash
	if transitionError != nil && !errors.As(transitionError, &crash) {
		return Outcome{}, transitionError
	}

	session.snapshot = next
	lines := stampLines(session.clock, messages)
	session.appendLines(lines)

	outcome := Outcome{
		Action:   action,
		Previous: previous,
		Next:     next,
		Lines:    lines,
		Crash:    crash,
	}

	if crash == nil {
		return outcome, nil
	}

	session.crash = crash
	for _, observer := range session.observers {
		observer.Crashed(crash, next)
	}

	return outcome, crash
}

// State returns the current screen.
func (session *Session) State() State {
	return session.snapshot.State
}

// BoostCount returns the current boost counter.
func (session *Session) BoostCount() int {
	return session.snapshot.BoostCount
}

// Snapshot returns the current state and counter.
func (session *Session) Snapshot() Snapshot {
	return session.snapshot
}

// Journal returns a copy of every line produced so far.
func (session *Session) Journal() []LogLine {
	return append([]LogLine{}, session.journal...)
}

// Crash returns the crash that aborted the session, if any.
func (session *Session) Crash() (*DeterministicCrash, bool) {
	return session.crash, session.crash != nil
}

// Aborted reports whether the session has crashed.
func (session *Session) Aborted() bool {
	return session.crash != nil
}

func (session *Session) appendLines(lines []LogLine) {
	for _, line := range lines {
		session.journal = append(session.journal, line)
		for _, observer := range session.observers {
			observer.LineAppended(line)
		}
	}
}
