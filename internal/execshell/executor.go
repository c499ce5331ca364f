package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CommandName identifies an executable invoked through the shell executor.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = "git"

const (
	gitTerminalPromptEnvironmentKeyConstant     = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant      = "0"
	commandStartedLogMessageConstant            = "executing command"
	commandCompletedLogMessageConstant          = "command completed"
	commandFailedLogMessageConstant             = "command exited with non-zero status"
	commandExecutionFailedLogMessageConstant    = "command execution failed"
	logFieldCommandNameConstant                 = "command_name"
	logFieldCommandArgumentsConstant            = "arguments"
	logFieldWorkingDirectoryConstant            = "working_directory"
	logFieldExitCodeConstant                    = "exit_code"
	logFieldStandardErrorConstant               = "stderr"
	commandFailedErrorTemplateConstant          = "%s exited with code %d%s"
	commandExecutionErrorTemplateConstant       = "%s could not be executed: %v"
	commandFailedStandardErrorSuffixConstant    = ": %s"
	commandDescriptionArgumentSeparatorConstant = " "
)

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New("shell executor logger not configured")
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New("shell executor command runner not configured")
)

// CommandDetails describes the arguments and environment of a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures process output and exit status.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran but exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failure CommandFailedError) Error() string {
	standardErrorSuffix := ""
	if trimmedStandardError := strings.TrimSpace(failure.Result.StandardError); len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(commandFailedStandardErrorSuffixConstant, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailedErrorTemplateConstant, describeCommand(failure.Command), failure.Result.ExitCode, standardErrorSuffix)
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, describeCommand(failure.Command), failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs commands through a CommandRunner while logging each invocation.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor constructs an executor. Observers receive lifecycle events in registration order.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	registeredObservers := make([]CommandEventObserver, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			registeredObservers = append(registeredObservers, observer)
		}
	}

	var resolvedObserver CommandEventObserver = noopCommandEventObserver{}
	if len(registeredObservers) > 0 {
		resolvedObserver = compositeCommandEventObserver(registeredObservers)
	}

	return &ShellExecutor{logger: logger, runner: runner, observer: resolvedObserver}, nil
}

// Execute runs the command and converts non-zero exits into CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(
			commandExecutionFailedLogMessageConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
			zap.Error(runError),
		)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Debug(
			commandFailedLogMessageConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(executionResult.StandardError)),
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	return executionResult, nil
}

// ExecuteGit runs git with terminal prompts disabled.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	environment := make(map[string]string, len(details.EnvironmentVariables)+1)
	for environmentKey, environmentValue := range details.EnvironmentVariables {
		environment[environmentKey] = environmentValue
	}
	if _, configured := environment[gitTerminalPromptEnvironmentKeyConstant]; !configured {
		environment[gitTerminalPromptEnvironmentKeyConstant] = gitTerminalPromptDisabledValueConstant
	}
	details.EnvironmentVariables = environment

	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

func describeCommand(command ShellCommand) string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandDescriptionArgumentSeparatorConstant)
}
