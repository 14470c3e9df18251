package stats

// CommandConfiguration captures persistent settings for the stats command.
type CommandConfiguration struct {
	Limit int `mapstructure:"limit"`
}

// DefaultCommandConfiguration returns baseline configuration values for the stats command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Limit: TopFileLimit}
}

// DefaultConfigurationValues exposes viper defaults keyed under the provided prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + ".limit": TopFileLimit,
	}
}

// Sanitize applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	if sanitized.Limit <= 0 {
		sanitized.Limit = TopFileLimit
	}
	return sanitized
}
