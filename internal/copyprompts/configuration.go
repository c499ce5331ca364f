package copyprompts

import (
	"strings"

	"github.com/temirov/promptsync/internal/distribution"
)

const (
	configurationSourceDirectoryKeyConstant           = "source_directory"
	configurationSyncGuidelinesKeyConstant            = "sync_guidelines"
	configurationGuidelinesChangeDetectionKeyConstant = "guidelines_change_detection"
	configurationPromptCommitScopeKeyConstant         = "prompt_commit_scope"
	configurationKeySeparatorConstant                 = "."
)

// CommandConfiguration captures configuration values for the copy command.
type CommandConfiguration struct {
	SourceDirectory           string                         `mapstructure:"source_directory"`
	SyncGuidelines            bool                           `mapstructure:"sync_guidelines"`
	GuidelinesChangeDetection bool                           `mapstructure:"guidelines_change_detection"`
	PromptCommitScope         distribution.PromptCommitScope `mapstructure:"prompt_commit_scope"`
}

// DefaultCommandConfiguration replaces the guidelines directory on every run and never commits copied prompts.
func DefaultCommandConfiguration() CommandConfiguration {
	defaultOptions := distribution.DefaultCopyOptions()
	return CommandConfiguration{
		SourceDirectory:           "",
		SyncGuidelines:            defaultOptions.SyncGuidelines,
		GuidelinesChangeDetection: defaultOptions.GuidelinesChangeDetection,
		PromptCommitScope:         defaultOptions.PromptCommitScope,
	}
}

// DefaultConfigurationValues produces Viper defaults for the copy command rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationSourceDirectoryKeyConstant:           defaults.SourceDirectory,
		rootKey + configurationKeySeparatorConstant + configurationSyncGuidelinesKeyConstant:            defaults.SyncGuidelines,
		rootKey + configurationKeySeparatorConstant + configurationGuidelinesChangeDetectionKeyConstant: defaults.GuidelinesChangeDetection,
		rootKey + configurationKeySeparatorConstant + configurationPromptCommitScopeKeyConstant:         string(defaults.PromptCommitScope),
	}
}

// Sanitize trims configuration values and falls back to the default prompt commit scope when it is blank.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.SourceDirectory = strings.TrimSpace(configuration.SourceDirectory)
	if len(strings.TrimSpace(string(configuration.PromptCommitScope))) == 0 {
		sanitized.PromptCommitScope = distribution.PromptCommitScopeNone
	}
	return sanitized
}

// CopyOptions converts the configuration into distribution options.
func (configuration CommandConfiguration) CopyOptions() distribution.CopyOptions {
	return distribution.CopyOptions{
		SyncGuidelines:            configuration.SyncGuidelines,
		GuidelinesChangeDetection: configuration.GuidelinesChangeDetection,
		PromptCommitScope:         configuration.PromptCommitScope,
	}
}
