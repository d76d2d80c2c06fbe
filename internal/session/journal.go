package session

import (
	"fmt"
	"time"
)

const (
	logLineTimestampLayoutConstant = "15:04:05"
	logLineTemplateConstant        = "[%s] %s"
	bootedMessageConstant          = "Booted"
	resetMessageConstant           = "RESET"
	stateEntryTemplateConstant     = "STATE -> %s"
	boostMessageTemplateConstant   = "BOOST x%d"
	boostIgnoredMessageConstant    = "BOOST ignored (not in PLAY)"
	fireMessageConstant            = "FIRE"
	fireFizzleMessageConstant      = "Nothing happened... (try BOOST x7)"
	fireIgnoredMessageConstant     = "FIRE ignored (not in PLAY)"
)

// Clock supplies the time used to stamp journal lines.
type Clock func() time.Time

// LogLine is a single journal entry produced by a transition.
type LogLine struct {
	Timestamp time.Time
	Message   string
}

// String renders the line as "[HH:MM:SS] message" in UTC.
func (line LogLine) String() string {
	return fmt.Sprintf(logLineTemplateConstant, line.Timestamp.UTC().Format(logLineTimestampLayoutConstant), line.Message)
}

func stateEntryMessage(state State) string {
	return fmt.Sprintf(stateEntryTemplateConstant, state)
}

func stampLines(clock Clock, messages []string) []LogLine {
	if len(messages) == 0 {
		return nil
	}
	timestamp := clock()
	stamped := make([]LogLine, 0, len(messages))
	for _, message := range messages {
		stamped = append(stamped, LogLine{Timestamp: timestamp, Message: message})
	}
	return stamped
}
