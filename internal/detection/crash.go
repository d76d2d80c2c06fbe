package detection

import (
	"fmt"
	"strings"
)

const (
	// CrashDetectorName labels reasons produced by CrashDetector.
	CrashDetectorName = "crash"

	exceptionReasonPrefixConstant      = "exception: "
	exceptionReasonTemplateConstant    = exceptionReasonPrefixConstant + "%s"
	fatalPatternReasonTemplateConstant = "journal fatal pattern matched: %s"
)

// DefaultFatalPatterns are matched case-insensitively against journal text.
func DefaultFatalPatterns() []string {
	return []string{"DEMO_CRASH", "Unhandled", "TypeError", "ReferenceError"}
}

// CrashDetector collects unique crash reasons in the order they were observed.
type CrashDetector struct {
	fatalPatterns []string
	reasons       []string
}

// NewCrashDetector constructs a detector. Blank patterns are ignored and an
// empty list falls back to DefaultFatalPatterns.
func NewCrashDetector(fatalPatterns []string) *CrashDetector {
	patterns := make([]string, 0, len(fatalPatterns))
	for _, pattern := range fatalPatterns {
		if trimmedPattern := strings.TrimSpace(pattern); len(trimmedPattern) > 0 {
			patterns = append(patterns, trimmedPattern)
		}
	}
	if len(patterns) == 0 {
		patterns = DefaultFatalPatterns()
	}
	return &CrashDetector{fatalPatterns: patterns}
}

// Mark records reason unless it is already known.
func (detector *CrashDetector) Mark(reason string) {
	for _, existing := range detector.reasons {
		if existing == reason {
			return
		}
	}
	detector.reasons = append(detector.reasons, reason)
}

// ObserveError records a failure surfaced as an error value.
func (detector *CrashDetector) ObserveError(err error) {
	if err == nil {
		return
	}
	detector.Mark(fmt.Sprintf(exceptionReasonTemplateConstant, err.Error()))
}

// ObserveLine records the first fatal pattern contained in text.
func (detector *CrashDetector) ObserveLine(text string) {
	loweredText := strings.ToLower(text)
	for _, pattern := range detector.fatalPatterns {
		if strings.Contains(loweredText, strings.ToLower(pattern)) {
			detector.Mark(fmt.Sprintf(fatalPatternReasonTemplateConstant, pattern))
			return
		}
	}
}

// Check returns the first recorded reason.
func (detector *CrashDetector) Check() (string, bool) {
	if len(detector.reasons) == 0 {
		return "", false
	}
	return detector.reasons[0], true
}

// Reasons returns a copy of every recorded reason.
func (detector *CrashDetector) Reasons() []string {
	return append([]string{}, detector.reasons...)
}

// ExceptionMessage extracts the error text from a reason produced by
// ObserveError.
func ExceptionMessage(reason string) (string, bool) {
	if !strings.HasPrefix(reason, exceptionReasonPrefixConstant) {
		return "", false
	}
	return strings.TrimPrefix(reason, exceptionReasonPrefixConstant), true
}
