package evidence

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	directoryPermissionsConstant         = 0o755
	filePermissionsConstant              = 0o644
	jsonIndentConstant                   = "  "
	stateEvidenceSuffixConstant          = "-state.json"
	defaultEvidenceLabelConstant         = "evidence"
	runIdentifierRequiredMessageConstant = "run identifier must be provided"
	bugReportPathRequiredMessageConstant = "bug report path must be provided"
	fileSystemRequiredMessageConstant    = "evidence store requires a file system"
	writeErrorTemplateConstant           = "unable to write %s: %w"
	readErrorTemplateConstant            = "unable to read %s: %w"
	encodeErrorTemplateConstant          = "unable to encode %s: %w"
	decodeErrorTemplateConstant          = "unable to decode %s: %w"
	artifactWrittenLogMessageConstant    = "evidence written"
	logFieldPathConstant                 = "path"
	logFieldKindConstant                 = "kind"
	artifactKindStateConstant            = "state"
	artifactKindCoverageConstant         = "coverage"
	artifactKindBugReportConstant        = "bug_report"
)

var (
	// ErrRunIdentifierRequired indicates a write without a run identifier.
	ErrRunIdentifierRequired = errors.New(runIdentifierRequiredMessageConstant)
	// ErrBugReportPathRequired indicates LoadBugReport received a blank path.
	ErrBugReportPathRequired = errors.New(bugReportPathRequiredMessageConstant)
	// ErrFileSystemRequired indicates NewStore received a nil FileSystem.
	ErrFileSystemRequired = errors.New(fileSystemRequiredMessageConstant)
)

// Store writes run artifacts beneath a RunContext and reads bug reports back.
type Store struct {
	fileSystem FileSystem
	runContext RunContext
	logger     *zap.Logger
}

// NewStore constructs a Store. A nil logger disables logging.
func NewStore(fileSystem FileSystem, runContext RunContext, logger *zap.Logger) (*Store, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemRequired
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{fileSystem: fileSystem, runContext: runContext, logger: logger}, nil
}

// RunContext returns the run the store writes into.
func (store *Store) RunContext() RunContext {
	return store.runContext
}

// SaveStateEvidence writes the state snapshot as <run dir>/<label>-state.json.
func (store *Store) SaveStateEvidence(label string, stateEvidence StateEvidence) (string, error) {
	if len(store.runContext.RunID) == 0 {
		return "", ErrRunIdentifierRequired
	}
	targetPath := filepath.Join(store.runContext.RunDirectory(), sanitizeLabel(label)+stateEvidenceSuffixConstant)
	return store.writeJSON(artifactKindStateConstant, targetPath, stateEvidence)
}

// SaveCoverage writes coverage to the run's coverage path.
func (store *Store) SaveCoverage(coverage *Coverage) (string, error) {
	if len(store.runContext.RunID) == 0 {
		return "", ErrRunIdentifierRequired
	}
	targetPath := store.runContext.CoveragePath()
	return store.writeJSON(artifactKindCoverageConstant, targetPath, coverage)
}

// SaveBugReport validates report and writes it as <bugs dir>/<id>.json.
func (store *Store) SaveBugReport(report BugReport) (string, error) {
	if validationError := report.Validate(); validationError != nil {
		return "", validationError
	}
	targetPath := filepath.Join(store.runContext.BugsDirectory(), report.ID+jsonExtensionConstant)
	return store.writeJSON(artifactKindBugReportConstant, targetPath, report)
}

// LoadBugReport reads and validates a bug report.
func (store *Store) LoadBugReport(path string) (BugReport, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return BugReport{}, ErrBugReportPathRequired
	}

	contents, readError := store.fileSystem.ReadFile(trimmedPath)
	if readError != nil {
		return BugReport{}, fmt.Errorf(readErrorTemplateConstant, trimmedPath, readError)
	}

	var report BugReport
	if decodeError := json.Unmarshal(contents, &report); decodeError != nil {
		return BugReport{}, fmt.Errorf(decodeErrorTemplateConstant, trimmedPath, decodeError)
	}
	if validationError := report.Validate(); validationError != nil {
		return BugReport{}, validationError
	}
	return report, nil
}

// LoadCoverage reads a coverage file written by SaveCoverage.
func (store *Store) LoadCoverage(path string) (*Coverage, error) {
	contents, readError := store.fileSystem.ReadFile(path)
	if readError != nil {
		return nil, fmt.Errorf(readErrorTemplateConstant, path, readError)
	}
	coverage := NewCoverage()
	if decodeError := json.Unmarshal(contents, coverage); decodeError != nil {
		return nil, fmt.Errorf(decodeErrorTemplateConstant, path, decodeError)
	}
	return coverage, nil
}

// writeJSON returns the absolute path of the written file, or the given path
// when it cannot be resolved.
func (store *Store) writeJSON(kind string, targetPath string, payload any) (string, error) {
	encoded, encodeError := json.MarshalIndent(payload, "", jsonIndentConstant)
	if encodeError != nil {
		return "", fmt.Errorf(encodeErrorTemplateConstant, kind, encodeError)
	}
	if mkdirError := store.fileSystem.MkdirAll(filepath.Dir(targetPath), directoryPermissionsConstant); mkdirError != nil {
		return "", fmt.Errorf(writeErrorTemplateConstant, targetPath, mkdirError)
	}
	if writeError := store.fileSystem.WriteFile(targetPath, append(encoded, '\n'), filePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(writeErrorTemplateConstant, targetPath, writeError)
	}

	writtenPath := targetPath
	if absolutePath, absoluteError := store.fileSystem.Abs(targetPath); absoluteError == nil {
		writtenPath = absolutePath
	}

	store.logger.Debug(artifactWrittenLogMessageConstant,
		zap.String(logFieldKindConstant, kind),
		zap.String(logFieldPathConstant, writtenPath),
	)
	return writtenPath, nil
}

func sanitizeLabel(label string) string {
	sanitized := strings.Map(func(character rune) rune {
		switch {
		case character >= 'a' && character <= 'z', character >= 'A' && character <= 'Z', character >= '0' && character <= '9':
			return character
		case character == '-' || character == '_':
			return character
		default:
			return '_'
		}
	}, strings.TrimSpace(label))
	if len(sanitized) == 0 {
		return defaultEvidenceLabelConstant
	}
	return sanitized
}
