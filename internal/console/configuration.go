package console

import "strings"

const (
	logLinesConfigurationKeyConstant  = "log_lines"
	logFileConfigurationKeyConstant   = "log_file"
	altScreenConfigurationKeyConstant = "alt_screen"
)

// CommandConfiguration captures configuration values for the play command.
type CommandConfiguration struct {
	LogLines  int    `mapstructure:"log_lines"`
	LogFile   string `mapstructure:"log_file"`
	AltScreen bool   `mapstructure:"alt_screen"`
}

// DefaultCommandConfiguration provides default settings for the play command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{LogLines: DefaultLogLines, LogFile: "", AltScreen: true}
}

// DefaultConfigurationValues returns the play defaults keyed under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + "." + logLinesConfigurationKeyConstant:  defaults.LogLines,
		prefix + "." + logFileConfigurationKeyConstant:   defaults.LogFile,
		prefix + "." + altScreenConfigurationKeyConstant: defaults.AltScreen,
	}
}

// Sanitize trims configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.LogFile = strings.TrimSpace(configuration.LogFile)
	if sanitized.LogLines <= 0 {
		sanitized.LogLines = DefaultLogLines
	}
	return sanitized
}
