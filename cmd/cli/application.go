package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/promptsync/internal/copyprompts"
	"github.com/temirov/promptsync/internal/distribution"
	"github.com/temirov/promptsync/internal/linkprompts"
	"github.com/temirov/promptsync/internal/utils"
	flagutils "github.com/temirov/promptsync/internal/utils/flags"
)

const (
	applicationNameConstant                    = "promptsync"
	applicationShortDescriptionConstant        = "Distribute shared prompt files into project repositories"
	applicationLongDescriptionConstant         = "promptsync copies or links a canonical .cursor/rules/global_prompts tree into many projects, keeps that path in each project's .gitignore, and commits the ignore-list change when the working tree is dirty."
	configFileFlagNameConstant                 = "config"
	configFileFlagUsageConstant                = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                   = "log-level"
	logLevelFlagUsageConstant                  = "Override the configured log level."
	logFormatFlagNameConstant                  = "log-format"
	logFormatFlagUsageConstant                 = "Override the configured log format (structured or console)."
	versionFlagNameConstant                    = "version"
	versionFlagUsageConstant                   = "Print the promptsync version and exit."
	versionOutputTemplateConstant              = "%s version: %s\n"
	developmentVersionConstant                 = "dev"
	developmentBuildVersionConstant            = "(devel)"
	semanticVersionPrefixConstant              = "v"
	commonConfigurationKeyConstant             = "common"
	commonLogLevelConfigKeyConstant            = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant           = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant              = "tools"
	copyConfigurationKeyConstant               = toolsConfigurationKeyConstant + ".copy"
	linkConfigurationKeyConstant               = toolsConfigurationKeyConstant + ".link"
	environmentPrefixConstant                  = "PROMPTSYNC"
	configurationSearchPathEnvironmentConstant = "PROMPTSYNC_CONFIG_SEARCH_PATH"
	configurationNameConstant                  = "config"
	configurationTypeConstant                  = "yaml"
	defaultConfigurationSearchPathConstant     = "."
	userConfigurationDirectoryNameConstant     = "promptsync"
	configurationInitializedMessageConstant    = "configuration initialized"
	configurationLogLevelFieldConstant         = "log_level"
	configurationLogFormatFieldConstant        = "log_format"
	configurationFileFieldConstant             = "config_file"
	configurationLoadErrorTemplateConstant     = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant        = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant            = "unable to flush logger: %w"
	unknownCommandErrorTemplateConstant        = "unknown command %q"
	rootCommandDebugMessageConstant            = "promptsync invoked without a subcommand"
	logFieldArgumentsConstant                  = "arguments"
)

// Version is the release version stamped at build time with -ldflags "-X".
var Version = ""

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for the copy and link commands.
type ApplicationToolsConfiguration struct {
	Copy copyprompts.CommandConfiguration `mapstructure:"copy"`
	Link linkprompts.CommandConfiguration `mapstructure:"link"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	consoleLogger         *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	versionFlagValue      bool
	versionResolver       func(context.Context) string
	exitFunction          func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	configurationLoader.AddDecodeHooks(distribution.PromptCommitScopeDecodeHook())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		consoleLogger:       zap.NewNop(),
		versionResolver:     resolveApplicationVersion,
		exitFunction:        os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if application.versionFlagValue {
				application.printVersion(command)
				return nil
			}
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVar(&application.versionFlagValue, versionFlagNameConstant, false, versionFlagUsageConstant)

	copyBuilder := copyprompts.CommandBuilder{
		LoggerProvider:               application.commandLogger,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() copyprompts.CommandConfiguration {
			return application.configuration.Tools.Copy
		},
	}
	copyCommand, copyBuildError := copyBuilder.Build()
	if copyBuildError == nil {
		cobraCommand.AddCommand(copyCommand)
	}

	linkBuilder := linkprompts.CommandBuilder{
		LoggerProvider:               application.commandLogger,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() linkprompts.CommandConfiguration {
			return application.configuration.Tools.Link
		},
	}
	linkCommand, linkBuildError := linkBuilder.Build()
	if linkBuildError == nil {
		cobraCommand.AddCommand(linkCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	application.rootCommand.SetArgs(flagutils.NormalizeToggleArguments(os.Args[1:]))
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// InitializeForCommand loads configuration and loggers as if the named subcommand were about to run.
func (application *Application) InitializeForCommand(commandUse string) error {
	for _, subcommand := range application.rootCommand.Commands() {
		if subcommand.Name() == commandUse {
			return application.initializeConfiguration(subcommand)
		}
	}
	return fmt.Errorf(unknownCommandErrorTemplateConstant, commandUse)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range copyprompts.DefaultConfigurationValues(copyConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range linkprompts.DefaultConfigurationValues(linkConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(strings.ToLower(application.configuration.Common.LogLevel)),
		utils.LogFormat(strings.ToLower(application.configuration.Common.LogFormat)),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) commandLogger() *zap.Logger {
	if application.humanReadableLoggingEnabled() {
		return application.consoleLogger
	}
	return application.logger
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.versionFlagValue {
		return nil
	}

	application.logger.Debug(rootCommandDebugMessageConstant, zap.Strings(logFieldArgumentsConstant, arguments))
	return command.Help()
}

func (application *Application) printVersion(command *cobra.Command) {
	resolvedVersion := application.versionResolver(command.Context())
	fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, applicationNameConstant, resolvedVersion)
	application.exitFunction(0)
}

func (application *Application) flushLogger() error {
	for _, logger := range []*zap.Logger{application.logger, application.consoleLogger} {
		if syncError := application.syncLoggerInstance(logger); syncError != nil {
			return syncError
		}
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func configurationSearchPaths() []string {
	if overridePath := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentConstant)); len(overridePath) > 0 {
		return filepath.SplitList(overridePath)
	}

	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, userConfigurationError := os.UserConfigDir(); userConfigurationError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, userConfigurationDirectoryNameConstant))
	}
	return searchPaths
}

func resolveApplicationVersion(_ context.Context) string {
	rawVersion := strings.TrimSpace(Version)
	if len(rawVersion) == 0 {
		if buildInformation, available := debug.ReadBuildInfo(); available {
			rawVersion = strings.TrimSpace(buildInformation.Main.Version)
		}
	}
	return normalizeVersion(rawVersion)
}

func normalizeVersion(rawVersion string) string {
	if len(rawVersion) == 0 || rawVersion == developmentBuildVersionConstant {
		return developmentVersionConstant
	}

	parsedVersion, parseError := semver.NewVersion(rawVersion)
	if parseError != nil {
		return rawVersion
	}
	return semanticVersionPrefixConstant + parsedVersion.String()
}
