package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/promptsync/internal/execshell"
	"github.com/temirov/promptsync/internal/gitrepo"
)

const (
	testRepositoryPathConstant  = "/workspace/project"
	testCommitMessageConstant   = "chore: add .cursor/rules/global_prompts to .gitignore"
	testIgnoreListPathConstant  = ".gitignore"
	testPorcelainOutputConstant = " M .gitignore\n"
)

type stubGitExecutor struct {
	result          execshell.ExecutionResult
	err             error
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return executor.result, executor.err
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestRepositoryManagerIssuesGitCommands(testInstance *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(manager *gitrepo.RepositoryManager) error
		expectedArguments []string
	}{
		{
			name: "working_tree_status",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				statusOutput, statusError := manager.WorkingTreeStatus(context.Background(), testRepositoryPathConstant)
				if statusError == nil && statusOutput != testPorcelainOutputConstant {
					return errors.New("unexpected status output")
				}
				return statusError
			},
			expectedArguments: []string{"status", "--porcelain"},
		},
		{
			name: "stage_paths",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.StagePaths(context.Background(), testRepositoryPathConstant, []string{testIgnoreListPathConstant})
			},
			expectedArguments: []string{"add", "--", testIgnoreListPathConstant},
		},
		{
			name: "commit_limited_to_staged_paths",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Commit(context.Background(), testRepositoryPathConstant, testCommitMessageConstant, []string{testIgnoreListPathConstant})
			},
			expectedArguments: []string{"commit", "-m", testCommitMessageConstant, "--", testIgnoreListPathConstant},
		},
		{
			name: "commit_whole_working_tree",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Commit(context.Background(), testRepositoryPathConstant, testCommitMessageConstant, []string{gitrepo.WorkingTreePathspec})
			},
			expectedArguments: []string{"commit", "-m", testCommitMessageConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{result: execshell.ExecutionResult{StandardOutput: testPorcelainOutputConstant}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			require.NoError(testInstance, testCase.invoke(manager))
			require.Len(testInstance, executor.recordedDetails, 1)
			require.Equal(testInstance, testCase.expectedArguments, executor.recordedDetails[0].Arguments)
			require.Equal(testInstance, testRepositoryPathConstant, executor.recordedDetails[0].WorkingDirectory)
		})
	}
}

func TestRepositoryManagerWrapsExecutorFailures(testInstance *testing.T) {
	commandFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: 1},
	}
	executor := &stubGitExecutor{err: commandFailure}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	_, statusError := manager.WorkingTreeStatus(context.Background(), testRepositoryPathConstant)
	require.ErrorAs(testInstance, statusError, &execshell.CommandFailedError{})

	commitError := manager.Commit(context.Background(), testRepositoryPathConstant, testCommitMessageConstant, []string{testIgnoreListPathConstant})
	require.ErrorAs(testInstance, commitError, &execshell.CommandFailedError{})
}

func TestRepositoryManagerRejectsEmptyStaging(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	stageError := manager.StagePaths(context.Background(), testRepositoryPathConstant, nil)
	require.ErrorIs(testInstance, stageError, gitrepo.ErrNoPathsToStage)
	require.Empty(testInstance, executor.recordedDetails)
}
