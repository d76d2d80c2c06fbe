package chaos

import (
	"strings"
	"time"

	"github.com/temirov/replayrig/internal/detection"
	"github.com/temirov/replayrig/internal/evidence"
)

const (
	stepsConfigurationKeyConstant         = "steps"
	durationConfigurationKeyConstant      = "duration"
	seedConfigurationKeyConstant          = "seed"
	stepDelayConfigurationKeyConstant     = "step_delay"
	artifactsConfigurationKeyConstant     = "artifacts"
	writeReportConfigurationKeyConstant   = "write_report"
	maxSameStepsConfigurationKeyConstant  = "max_same_snapshot_steps"
	fatalPatternsConfigurationKeyConstant = "fatal_patterns"
)

// CommandConfiguration captures configuration values for the chaos command.
type CommandConfiguration struct {
	Steps                int           `mapstructure:"steps"`
	Duration             time.Duration `mapstructure:"duration"`
	Seed                 int64         `mapstructure:"seed"`
	StepDelay            time.Duration `mapstructure:"step_delay"`
	ArtifactsRoot        string        `mapstructure:"artifacts"`
	WriteReport          bool          `mapstructure:"write_report"`
	MaxSameSnapshotSteps int           `mapstructure:"max_same_snapshot_steps"`
	FatalPatterns        []string      `mapstructure:"fatal_patterns"`
}

// DefaultCommandConfiguration provides baseline chaos settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Steps:                DefaultSteps,
		Duration:             0,
		Seed:                 DefaultSeed,
		StepDelay:            DefaultStepDelay,
		ArtifactsRoot:        evidence.DefaultArtifactsRoot,
		WriteReport:          true,
		MaxSameSnapshotSteps: detection.DefaultMaxSameSnapshotSteps,
		FatalPatterns:        detection.DefaultFatalPatterns(),
	}
}

// DefaultConfigurationValues returns the chaos defaults keyed under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + "." + stepsConfigurationKeyConstant:         defaults.Steps,
		prefix + "." + durationConfigurationKeyConstant:      defaults.Duration,
		prefix + "." + seedConfigurationKeyConstant:          defaults.Seed,
		prefix + "." + stepDelayConfigurationKeyConstant:     defaults.StepDelay,
		prefix + "." + artifactsConfigurationKeyConstant:     defaults.ArtifactsRoot,
		prefix + "." + writeReportConfigurationKeyConstant:   defaults.WriteReport,
		prefix + "." + maxSameStepsConfigurationKeyConstant:  defaults.MaxSameSnapshotSteps,
		prefix + "." + fatalPatternsConfigurationKeyConstant: defaults.FatalPatterns,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ArtifactsRoot = strings.TrimSpace(configuration.ArtifactsRoot)
	sanitized.FatalPatterns = make([]string, 0, len(configuration.FatalPatterns))
	for _, pattern := range configuration.FatalPatterns {
		if trimmedPattern := strings.TrimSpace(pattern); len(trimmedPattern) > 0 {
			sanitized.FatalPatterns = append(sanitized.FatalPatterns, trimmedPattern)
		}
	}
	return sanitized
}
