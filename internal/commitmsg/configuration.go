package commitmsg

import (
	"strings"

	"github.com/gitt-tools/gitt/internal/llm"
)

// DefaultRecentSubjectLimit bounds the history excerpt included in the prompt.
const DefaultRecentSubjectLimit = 5

// CommandConfiguration captures persistent settings for the commit command.
type CommandConfiguration struct {
	Model string `mapstructure:"model"`
}

// DefaultCommandConfiguration returns baseline configuration values for the commit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Model: llm.DefaultModel}
}

// DefaultConfigurationValues exposes viper defaults keyed under the provided prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + ".model": llm.DefaultModel,
	}
}

// Sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Model = strings.TrimSpace(configuration.Model)
	if len(sanitized.Model) == 0 {
		sanitized.Model = llm.DefaultModel
	}
	return sanitized
}
