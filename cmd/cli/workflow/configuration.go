package workflow

import "strings"

const (
	scriptConfigurationKeyConstant = "script"
)

// CommandConfiguration captures configuration values for the run command.
type CommandConfiguration struct {
	Script string `mapstructure:"script"`
}

// DefaultCommandConfiguration provides default settings for the run command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Script: ""}
}

// DefaultConfigurationValues returns the run command defaults keyed under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + "." + scriptConfigurationKeyConstant: defaults.Script,
	}
}

// Sanitize normalizes configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Script = strings.TrimSpace(configuration.Script)
	return sanitized
}
