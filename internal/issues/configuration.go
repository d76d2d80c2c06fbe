package issues

import "strings"

const (
	repositoryConfigurationKeyConstant = "repo"
	labelsConfigurationKeyConstant     = "labels"
	dryRunConfigurationKeyConstant     = "dry_run"
)

// CommandConfiguration captures configuration values for the issue command.
type CommandConfiguration struct {
	Repository string   `mapstructure:"repo"`
	Labels     []string `mapstructure:"labels"`
	DryRun     bool     `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides default settings for the issue command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Repository: "",
		Labels:     []string{"bug", "chaos"},
		DryRun:     false,
	}
}

// DefaultConfigurationValues returns the issue defaults keyed under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + "." + repositoryConfigurationKeyConstant: defaults.Repository,
		prefix + "." + labelsConfigurationKeyConstant:     defaults.Labels,
		prefix + "." + dryRunConfigurationKeyConstant:     defaults.DryRun,
	}
}

// Sanitize trims the repository and drops blank or repeated labels.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.Labels = sanitizeLabels(configuration.Labels)
	return sanitized
}

func sanitizeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	sanitized := make([]string, 0, len(labels))
	for _, label := range labels {
		trimmedLabel := strings.TrimSpace(label)
		if len(trimmedLabel) == 0 {
			continue
		}
		if _, duplicate := seen[trimmedLabel]; duplicate {
			continue
		}
		seen[trimmedLabel] = struct{}{}
		sanitized = append(sanitized, trimmedLabel)
	}
	return sanitized
}
