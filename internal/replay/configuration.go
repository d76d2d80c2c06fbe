package replay

const (
	showJournalConfigurationKeyConstant = "show_journal"
)

// CommandConfiguration captures configuration values for the replay command.
type CommandConfiguration struct {
	ShowJournal bool `mapstructure:"show_journal"`
}

// DefaultCommandConfiguration provides default settings for the replay command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{ShowJournal: false}
}

// DefaultConfigurationValues returns the replay defaults keyed under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	return map[string]any{
		prefix + "." + showJournalConfigurationKeyConstant: DefaultCommandConfiguration().ShowJournal,
	}
}
