package copyprompts

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptsync/internal/dependencies"
	"github.com/temirov/promptsync/internal/distribution"
	"github.com/temirov/promptsync/internal/gitrepo"
	"github.com/temirov/promptsync/internal/layout"
	"github.com/temirov/promptsync/internal/targets"
	flagutils "github.com/temirov/promptsync/internal/utils/flags"
	pathutils "github.com/temirov/promptsync/internal/utils/path"
)

const (
	commandUseNameConstant                   = "copy"
	commandUsageTemplateConstant             = commandUseNameConstant + " <targets-file>"
	commandExampleTemplateConstant           = "promptsync copy ~/prompt_targets.json --prompt-commit-scope working-tree"
	commandShortDescriptionConstant          = "Copy prompt files and programming guidelines into projects"
	commandLongDescriptionConstant           = "copy reads a JSON or YAML array of {repository_path, prompts} records, adds .cursor/rules/global_prompts to each project's .gitignore, replaces the programming_guidelines directory, and copies the listed prompt files whose bytes differ from the canonical source."
	argumentCountErrorTemplateConstant       = "%w: received %d"
	commandExecutionErrorTemplateConstant    = "prompt copy failed: %w"
	flagSourceNameConstant                   = "source"
	flagSourceDescriptionConstant            = "Canonical prompts directory (defaults to .cursor/rules/global_prompts next to the executable)"
	flagGuidelinesNameConstant               = "guidelines"
	flagGuidelinesDescriptionConstant        = "Replace the programming_guidelines directory in every project"
	flagChangeDetectionNameConstant          = "guidelines-change-detection"
	flagChangeDetectionDescriptionConstant   = "Leave programming_guidelines untouched when its contents already match the source"
	flagPromptCommitScopeNameConstant        = "prompt-commit-scope"
	flagPromptCommitScopeDescriptionConstant = "Commit copied prompt files by staging the selected scope"
	targetsLoadedMessageConstant             = "Loaded copy targets"
	logFieldTargetsFileConstant              = "targets_file"
	logFieldTargetCountConstant              = "target_count"
	logFieldSourceRootConstant               = "source_root"
)

// ErrTargetsFileArgumentRequired indicates the command was invoked without exactly one targets file.
var ErrTargetsFileArgumentRequired = errors.New("copy requires exactly one targets file argument")

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the copy command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	FileSystem                   afero.Fs
	GitExecutor                  gitrepo.GitExecutor
	ExecutableLocator            layout.ExecutableLocator
	PathSanitizer                *pathutils.TargetPathSanitizer
}

type commandFlagValues struct {
	sourceDirectory           string
	syncGuidelines            bool
	guidelinesChangeDetection bool
	promptCommitScope         string
}

// Build constructs the copy command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &commandFlagValues{}
	command := &cobra.Command{
		Use:     commandUsageTemplateConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleTemplateConstant,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().StringVar(&flagValues.sourceDirectory, flagSourceNameConstant, "", flagSourceDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), &flagValues.syncGuidelines, flagGuidelinesNameConstant, defaults.SyncGuidelines, flagGuidelinesDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), &flagValues.guidelinesChangeDetection, flagChangeDetectionNameConstant, defaults.GuidelinesChangeDetection, flagChangeDetectionDescriptionConstant)
	flagutils.AddChoiceFlag(
		command.Flags(),
		&flagValues.promptCommitScope,
		flagPromptCommitScopeNameConstant,
		string(defaults.PromptCommitScope),
		[]string{string(distribution.PromptCommitScopeNone), string(distribution.PromptCommitScopeWorkingTree)},
		flagPromptCommitScopeDescriptionConstant,
	)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	if len(arguments) != 1 {
		_ = command.Usage()
		return fmt.Errorf(argumentCountErrorTemplateConstant, ErrTargetsFileArgumentRequired, len(arguments))
	}

	configuration, configurationError := builder.applyFlagOverrides(command, flagValues, builder.resolveConfiguration())
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	pathSanitizer := builder.PathSanitizer
	if pathSanitizer == nil {
		pathSanitizer = pathutils.NewTargetPathSanitizer(nil)
	}

	sourceRoot, sourceError := layout.NewSourceResolver(fileSystem, builder.ExecutableLocator).Resolve(configuration.SourceDirectory)
	if sourceError != nil {
		return sourceError
	}

	targetsLoader, loaderError := targets.NewLoader(fileSystem, pathSanitizer)
	if loaderError != nil {
		return loaderError
	}

	targetsFilePath := pathSanitizer.SanitizePath(arguments[0])
	syncTargets, loadError := targetsLoader.LoadCopyTargets(targetsFilePath)
	if loadError != nil {
		return loadError
	}
	logger.Debug(
		targetsLoadedMessageConstant,
		zap.String(logFieldTargetsFileConstant, targetsFilePath),
		zap.Int(logFieldTargetCountConstant, len(syncTargets)),
		zap.String(logFieldSourceRootConstant, sourceRoot),
	)

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLogging())
	if executorError != nil {
		return executorError
	}

	service, serviceError := dependencies.ResolveDistributionService(fileSystem, gitExecutor, logger)
	if serviceError != nil {
		return serviceError
	}

	if _, distributeError := service.DistributeCopies(resolveExecutionContext(command), sourceRoot, syncTargets, configuration.CopyOptions()); distributeError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, distributeError)
	}
	return nil
}

func (builder *CommandBuilder) applyFlagOverrides(command *cobra.Command, flagValues *commandFlagValues, configuration CommandConfiguration) (CommandConfiguration, error) {
	flagSet := command.Flags()
	if flagSet.Changed(flagSourceNameConstant) {
		configuration.SourceDirectory = flagValues.sourceDirectory
	}
	if flagSet.Changed(flagGuidelinesNameConstant) {
		configuration.SyncGuidelines = flagValues.syncGuidelines
	}
	if flagSet.Changed(flagChangeDetectionNameConstant) {
		configuration.GuidelinesChangeDetection = flagValues.guidelinesChangeDetection
	}
	if flagSet.Changed(flagPromptCommitScopeNameConstant) {
		promptCommitScope, parseError := distribution.ParsePromptCommitScope(flagValues.promptCommitScope)
		if parseError != nil {
			return CommandConfiguration{}, parseError
		}
		configuration.PromptCommitScope = promptCommitScope
	}
	return configuration.Sanitize(), nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func resolveExecutionContext(command *cobra.Command) context.Context {
	if executionContext := command.Context(); executionContext != nil {
		return executionContext
	}
	return context.Background()
}
