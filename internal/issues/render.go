package issues

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/temirov/replayrig/internal/evidence"
)

const (
	titleTemplateConstant            = "[%s] %s"
	titleReasonLimitConstant         = 80
	fallbackDetectorConstant         = "bug"
	fallbackReasonConstant           = "Unexpected behavior"
	missingStepsConstant             = "Reproduction steps unavailable"
	missingEvidenceConstant          = "- No evidence provided"
	expectedBehaviorConstant         = "The session should keep running without crashing or hanging."
	summaryHeadingConstant           = "## Summary"
	stepsHeadingConstant             = "## Steps to Reproduce"
	expectedHeadingConstant          = "## Expected Behavior"
	actualHeadingConstant            = "## Actual Behavior"
	evidenceHeadingConstant          = "## Evidence"
	environmentHeadingConstant       = "## Environment"
	journalHeadingConstant           = "### Journal"
	codeFenceConstant                = "```"
	detectorLineTemplateConstant     = "- Detector: `%s`"
	reasonLineTemplateConstant       = "- Reason: %s"
	bugIDLineTemplateConstant        = "- Bug ID: `%s`"
	runIDLineTemplateConstant        = "- Run ID: `%s`"
	seedLineTemplateConstant         = "- Seed: %d"
	actionsLineTemplateConstant      = "- Actions dispatched: %d"
	stepLineTemplateConstant         = "%d. %s"
	replayHintTemplateConstant       = "Replay with `replayrig replay %s`."
	lastStateTemplateConstant        = "Last state: %s (boost x%d)"
	reportEvidenceTemplateConstant   = "- bug report: %s"
	stateEvidenceTemplateConstant    = "- state: %s"
	coverageEvidenceTemplateConstant = "- coverage: %s"
	coverageSummaryTemplateConstant  = " (%d/%d states, %d actions)"
	runtimeLineTemplateConstant      = "- Runtime: replayrig on %s/%s"
	unknownRunIdentifierConstant     = "unknown-run"
	truncationSuffixConstant         = "..."
	bodySectionSeparatorConstant     = "\n\n"
	bodyLineSeparatorConstant        = "\n"
	bodyTrailingNewlineConstant      = "\n"
)

// Attachments carries context that is not stored inside the report itself.
type Attachments struct {
	ReportPath string
	Coverage   *evidence.Coverage
}

// Draft is a rendered issue.
type Draft struct {
	Title string
	Body  string
}

// Render builds the issue title "[DETECTOR] reason" and a Markdown body with
// summary, reproduction steps, evidence and environment sections.
func Render(report evidence.BugReport, attachments Attachments) Draft {
	detector := valueOrFallback(report.Detector, fallbackDetectorConstant)
	reason := valueOrFallback(report.Reason, fallbackReasonConstant)
	runIdentifier := valueOrFallback(report.RunID, unknownRunIdentifierConstant)

	sections := []string{
		joinLines(
			summaryHeadingConstant,
			fmt.Sprintf(detectorLineTemplateConstant, detector),
			fmt.Sprintf(reasonLineTemplateConstant, reason),
			fmt.Sprintf(bugIDLineTemplateConstant, report.ID),
			fmt.Sprintf(runIDLineTemplateConstant, runIdentifier),
			fmt.Sprintf(seedLineTemplateConstant, report.Seed),
			fmt.Sprintf(actionsLineTemplateConstant, len(report.Actions)),
		),
		renderSteps(report.ReproSteps, attachments.ReportPath),
		joinLines(expectedHeadingConstant, expectedBehaviorConstant),
		joinLines(
			actualHeadingConstant,
			reason,
			fmt.Sprintf(lastStateTemplateConstant, report.LastState.State, report.LastState.BoostCount),
		),
		renderEvidence(report, attachments),
		joinLines(
			environmentHeadingConstant,
			fmt.Sprintf(runtimeLineTemplateConstant, runtime.GOOS, runtime.GOARCH),
			fmt.Sprintf(runIDLineTemplateConstant, runIdentifier),
		),
	}

	return Draft{
		Title: fmt.Sprintf(titleTemplateConstant, strings.ToUpper(detector), truncate(reason, titleReasonLimitConstant)),
		Body:  strings.Join(sections, bodySectionSeparatorConstant) + bodyTrailingNewlineConstant,
	}
}

func renderSteps(reproSteps []string, reportPath string) string {
	lines := []string{stepsHeadingConstant}
	if len(reproSteps) == 0 {
		reproSteps = []string{missingStepsConstant}
	}
	for stepIndex, step := range reproSteps {
		lines = append(lines, fmt.Sprintf(stepLineTemplateConstant, stepIndex+1, step))
	}
	if len(reportPath) > 0 {
		lines = append(lines, "", fmt.Sprintf(replayHintTemplateConstant, reportPath))
	}
	return joinLines(lines...)
}

func renderEvidence(report evidence.BugReport, attachments Attachments) string {
	var evidenceLines []string
	if len(attachments.ReportPath) > 0 {
		evidenceLines = append(evidenceLines, fmt.Sprintf(reportEvidenceTemplateConstant, attachments.ReportPath))
	}
	if len(report.Evidence.StatePath) > 0 {
		evidenceLines = append(evidenceLines, fmt.Sprintf(stateEvidenceTemplateConstant, report.Evidence.StatePath))
	}
	if len(report.Evidence.CoveragePath) > 0 {
		coverageLine := fmt.Sprintf(coverageEvidenceTemplateConstant, report.Evidence.CoveragePath)
		if attachments.Coverage != nil {
			summary := attachments.Coverage.Summary()
			coverageLine += fmt.Sprintf(coverageSummaryTemplateConstant, len(summary.VisitedStates), len(summary.VisitedStates)+len(summary.MissingStates), summary.ActionsTried)
		}
		evidenceLines = append(evidenceLines, coverageLine)
	}
	if len(evidenceLines) == 0 {
		evidenceLines = append(evidenceLines, missingEvidenceConstant)
	}

	lines := append([]string{evidenceHeadingConstant}, evidenceLines...)
	if len(report.Journal) > 0 {
		lines = append(lines, "", journalHeadingConstant, codeFenceConstant)
		lines = append(lines, report.Journal...)
		lines = append(lines, codeFenceConstant)
	}
	return joinLines(lines...)
}

func joinLines(lines ...string) string {
	return strings.Join(lines, bodyLineSeparatorConstant)
}

func valueOrFallback(value string, fallback string) string {
	if trimmedValue := strings.TrimSpace(value); len(trimmedValue) > 0 {
		return trimmedValue
	}
	return fallback
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + truncationSuffixConstant
}
