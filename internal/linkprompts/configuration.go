package linkprompts

import "strings"

const configurationSourceDirectoryKeyConstant = "source_directory"

// CommandConfiguration captures configuration values for the link command.
type CommandConfiguration struct {
	SourceDirectory string `mapstructure:"source_directory"`
}

// DefaultCommandConfiguration resolves the canonical source next to the executable.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{SourceDirectory: ""}
}

// DefaultConfigurationValues produces Viper defaults for the link command rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationSourceDirectoryKeyConstant: defaults.SourceDirectory,
	}
}

// Sanitize trims configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.SourceDirectory = strings.TrimSpace(configuration.SourceDirectory)
	return sanitized
}
