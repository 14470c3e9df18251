package changelog

import (
	"strings"

	"github.com/gitt-tools/gitt/internal/llm"
)

// DefaultOutputFileName is the changelog file written when no --output is provided.
const DefaultOutputFileName = "CHANGELOG.md"

// CommandConfiguration captures persistent settings for the changelog command.
type CommandConfiguration struct {
	Output string `mapstructure:"output"`
	Model  string `mapstructure:"model"`
}

// DefaultCommandConfiguration returns baseline configuration values for the changelog command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Output: DefaultOutputFileName,
		Model:  llm.DefaultModel,
	}
}

// DefaultConfigurationValues exposes viper defaults keyed under the provided prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + ".output": DefaultOutputFileName,
		configurationPrefix + ".model":  llm.DefaultModel,
	}
}

// Sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Output = strings.TrimSpace(configuration.Output)
	if len(sanitized.Output) == 0 {
		sanitized.Output = DefaultOutputFileName
	}
	sanitized.Model = strings.TrimSpace(configuration.Model)
	if len(sanitized.Model) == 0 {
		sanitized.Model = llm.DefaultModel
	}
	return sanitized
}
