package evidence

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultArtifactsRoot is used when no artifacts directory is configured.
	DefaultArtifactsRoot = "artifacts"

	runsDirectoryNameConstant     = "runs"
	bugsDirectoryNameConstant     = "bugs"
	coverageDirectoryNameConstant = "coverage"
	jsonExtensionConstant         = ".json"
)

// RunContext locates the artifacts of one harness run.
type RunContext struct {
	RunID         string
	ArtifactsRoot string
}

// NewRunContext starts a run with a fresh UUID under artifactsRoot.
func NewRunContext(artifactsRoot string) RunContext {
	return NewRunContextWithID(uuid.NewString(), artifactsRoot)
}

// NewRunContextWithID builds a context for an existing run identifier. A
// blank identifier is replaced with a fresh UUID and a blank root with
// DefaultArtifactsRoot.
func NewRunContextWithID(runID string, artifactsRoot string) RunContext {
	trimmedRunID := strings.TrimSpace(runID)
	if len(trimmedRunID) == 0 {
		trimmedRunID = uuid.NewString()
	}
	trimmedRoot := strings.TrimSpace(artifactsRoot)
	if len(trimmedRoot) == 0 {
		trimmedRoot = DefaultArtifactsRoot
	}
	return RunContext{RunID: trimmedRunID, ArtifactsRoot: trimmedRoot}
}

// RunDirectory holds per-run evidence such as state snapshots.
func (runContext RunContext) RunDirectory() string {
	return filepath.Join(runContext.ArtifactsRoot, runsDirectoryNameConstant, runContext.RunID)
}

// BugsDirectory holds bug reports from every run.
func (runContext RunContext) BugsDirectory() string {
	return filepath.Join(runContext.ArtifactsRoot, bugsDirectoryNameConstant)
}

// CoveragePath is the coverage file of this run.
func (runContext RunContext) CoveragePath() string {
	return filepath.Join(runContext.ArtifactsRoot, coverageDirectoryNameConstant, runContext.RunID+jsonExtensionConstant)
}
