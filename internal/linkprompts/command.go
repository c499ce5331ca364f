package linkprompts

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/promptsync/internal/dependencies"
	"github.com/temirov/promptsync/internal/gitrepo"
	"github.com/temirov/promptsync/internal/layout"
	"github.com/temirov/promptsync/internal/privilege"
	"github.com/temirov/promptsync/internal/targets"
	pathutils "github.com/temirov/promptsync/internal/utils/path"
)

const (
	commandUseNameConstant                = "link"
	commandUsageTemplateConstant          = commandUseNameConstant + " <paths-file>"
	commandExampleTemplateConstant        = "promptsync link ~/prompt_projects.txt"
	commandShortDescriptionConstant       = "Link the canonical prompts directory into projects"
	commandLongDescriptionConstant        = "link reads one project directory per line, adds .cursor/rules/global_prompts to each project's .gitignore, and replaces that entry with a symbolic link to the canonical prompts directory. Blank lines and lines starting with # are ignored. On Windows the command must run elevated."
	argumentCountErrorTemplateConstant    = "%w: received %d"
	commandExecutionErrorTemplateConstant = "prompt link failed: %w"
	flagSourceNameConstant                = "source"
	flagSourceDescriptionConstant         = "Canonical prompts directory (defaults to .cursor/rules/global_prompts next to the executable)"
	targetsLoadedMessageConstant          = "Loaded link targets"
	logFieldTargetsFileConstant           = "targets_file"
	logFieldTargetCountConstant           = "target_count"
	logFieldSourceRootConstant            = "source_root"
)

// ErrPathsFileArgumentRequired indicates the command was invoked without exactly one paths file.
var ErrPathsFileArgumentRequired = errors.New("link requires exactly one paths file argument")

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// PrivilegeChecker reports whether the process may create symbolic links.
type PrivilegeChecker func() error

// CommandBuilder assembles the link command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	FileSystem                   afero.Fs
	GitExecutor                  gitrepo.GitExecutor
	ExecutableLocator            layout.ExecutableLocator
	PathSanitizer                *pathutils.TargetPathSanitizer
	PrivilegeChecker             PrivilegeChecker
}

// Build constructs the link command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	var sourceDirectoryFlagValue string
	command := &cobra.Command{
		Use:     commandUsageTemplateConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleTemplateConstant,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, sourceDirectoryFlagValue)
		},
	}

	command.Flags().StringVar(&sourceDirectoryFlagValue, flagSourceNameConstant, "", flagSourceDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, sourceDirectoryFlagValue string) error {
	if len(arguments) != 1 {
		_ = command.Usage()
		return fmt.Errorf(argumentCountErrorTemplateConstant, ErrPathsFileArgumentRequired, len(arguments))
	}

	if privilegeError := builder.resolvePrivilegeChecker()(); privilegeError != nil {
		return privilegeError
	}

	configuration := builder.resolveConfiguration()
	if command.Flags().Changed(flagSourceNameConstant) {
		configuration.SourceDirectory = sourceDirectoryFlagValue
		configuration = configuration.Sanitize()
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
	targetPaths, loadError := targetsLoader.LoadLinkTargets(targetsFilePath)
	if loadError != nil {
		return loadError
	}
	logger.Debug(
		targetsLoadedMessageConstant,
		zap.String(logFieldTargetsFileConstant, targetsFilePath),
		zap.Int(logFieldTargetCountConstant, len(targetPaths)),
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

	if _, distributeError := service.DistributeLinks(resolveExecutionContext(command), sourceRoot, targetPaths); distributeError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, distributeError)
	}
	return nil
}

func (builder *CommandBuilder) resolvePrivilegeChecker() PrivilegeChecker {
	if builder.PrivilegeChecker == nil {
		return privilege.EnsureSymlinkPrivileges
	}
	return builder.PrivilegeChecker
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
