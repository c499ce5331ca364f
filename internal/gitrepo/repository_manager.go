package gitrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/promptsync/internal/execshell"
)

const (
	gitStatusSubcommandConstant            = "status"
	gitPorcelainFlagConstant               = "--porcelain"
	gitAddSubcommandConstant               = "add"
	gitPathspecSeparatorConstant           = "--"
	gitCommitSubcommandConstant            = "commit"
	gitMessageFlagConstant                 = "-m"
	workingTreeStatusErrorTemplateConstant = "unable to read working tree status in %s: %w"
	stagePathsErrorTemplateConstant        = "unable to stage %v in %s: %w"
	commitErrorTemplateConstant            = "unable to commit in %s: %w"
)

var (
	// ErrExecutorNotConfigured indicates the repository manager was constructed without a git executor.
	ErrExecutorNotConfigured = errors.New("git executor not configured")
	// ErrNoPathsToStage indicates a staging request without paths.
	ErrNoPathsToStage = errors.New("no paths provided for staging")
)

// GitExecutor runs git invocations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// VersionControl is the capability set required to record distribution changes.
type VersionControl interface {
	WorkingTreeStatus(executionContext context.Context, repositoryPath string) (string, error)
	StagePaths(executionContext context.Context, repositoryPath string, paths []string) error
	Commit(executionContext context.Context, repositoryPath string, message string, paths []string) error
}

// RepositoryManager implements VersionControl on top of the git executable.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// WorkingTreeStatus returns the porcelain status output for the repository.
func (manager *RepositoryManager) WorkingTreeStatus(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitPorcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", fmt.Errorf(workingTreeStatusErrorTemplateConstant, repositoryPath, executionError)
	}
	return executionResult.StandardOutput, nil
}

// StagePaths stages exactly the provided pathspecs.
func (manager *RepositoryManager) StagePaths(executionContext context.Context, repositoryPath string, paths []string) error {
	if len(paths) == 0 {
		return ErrNoPathsToStage
	}

	arguments := append([]string{gitAddSubcommandConstant, gitPathspecSeparatorConstant}, paths...)
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return fmt.Errorf(stagePathsErrorTemplateConstant, paths, repositoryPath, executionError)
	}
	return nil
}

// Commit records changes with the provided message. Non-empty paths limit the commit to those pathspecs
// so unrelated entries already in the index stay uncommitted. A lone WorkingTreePathspec commits the whole index.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string, paths []string) error {
	arguments := []string{gitCommitSubcommandConstant, gitMessageFlagConstant, message}
	if !coversWorkingTree(paths) {
		arguments = append(append(arguments, gitPathspecSeparatorConstant), paths...)
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return fmt.Errorf(commitErrorTemplateConstant, repositoryPath, executionError)
	}
	return nil
}

func coversWorkingTree(paths []string) bool {
	return len(paths) == 0 || (len(paths) == 1 && paths[0] == WorkingTreePathspec)
}
