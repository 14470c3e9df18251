package dashboard

import "strings"

// DefaultListenAddress is the loopback address the dashboard binds by default.
const DefaultListenAddress = "127.0.0.1:8417"

// CommandConfiguration captures persistent settings for the serve command.
type CommandConfiguration struct {
	Address string `mapstructure:"address"`
}

// DefaultCommandConfiguration returns baseline configuration values for the serve command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Address: DefaultListenAddress}
}

// DefaultConfigurationValues exposes viper defaults keyed under the provided prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + ".address": DefaultListenAddress,
	}
}

// Sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Address = strings.TrimSpace(configuration.Address)
	if len(sanitized.Address) == 0 {
		sanitized.Address = DefaultListenAddress
	}
	return sanitized
}
