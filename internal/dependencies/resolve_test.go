package dependencies_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/promptsync/internal/dependencies"
	"github.com/temirov/promptsync/internal/distribution"
	"github.com/temirov/promptsync/internal/execshell"
	"github.com/temirov/promptsync/internal/layout"
	"github.com/temirov/promptsync/internal/targets"
)

const (
	testSourceRootConstant     = "/canonical/global_prompts"
	testRepositoryPathConstant = "/projects/alpha"
	testPromptFileConstant     = "review.md"
)

type recordingGitExecutor struct {
	invocations    []execshell.CommandDetails
	statusSequence []string
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, details)
	if len(details.Arguments) > 0 && details.Arguments[0] == "status" && len(executor.statusSequence) > 0 {
		statusOutput := executor.statusSequence[0]
		executor.statusSequence = executor.statusSequence[1:]
		return execshell.ExecutionResult{StandardOutput: statusOutput}, nil
	}
	return execshell.ExecutionResult{}, nil
}

func TestResolveFileSystemPrefersExisting(testInstance *testing.T) {
	existingFileSystem := afero.NewMemMapFs()
	require.Same(testInstance, existingFileSystem, dependencies.ResolveFileSystem(existingFileSystem))
	require.IsType(testInstance, &afero.OsFs{}, dependencies.ResolveFileSystem(nil))
}

func TestResolveGitExecutor(testInstance *testing.T) {
	testCases := []struct {
		name          string
		existing      *recordingGitExecutor
		humanReadable bool
	}{
		{name: "existing_executor", existing: &recordingGitExecutor{}},
		{name: "shell_executor", humanReadable: false},
		{name: "shell_executor_with_console_observer", humanReadable: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			if testCase.existing != nil {
				resolvedExecutor, resolveError := dependencies.ResolveGitExecutor(testCase.existing, zap.NewNop(), testCase.humanReadable)
				require.NoError(subtest, resolveError)
				require.Same(subtest, testCase.existing, resolvedExecutor)
				return
			}

			resolvedExecutor, resolveError := dependencies.ResolveGitExecutor(nil, zap.NewNop(), testCase.humanReadable)
			require.NoError(subtest, resolveError)
			require.IsType(subtest, &execshell.ShellExecutor{}, resolvedExecutor)
		})
	}
}

func TestResolveGitExecutorRequiresLogger(testInstance *testing.T) {
	_, resolveError := dependencies.ResolveGitExecutor(nil, nil, false)
	require.ErrorIs(testInstance, resolveError, execshell.ErrLoggerNotConfigured)
}

func TestResolveDistributionServiceCopiesAndCommitsMarker(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, fileSystem.MkdirAll(testRepositoryPathConstant, 0o755))
	require.NoError(testInstance, afero.WriteFile(fileSystem, filepath.Join(testSourceRootConstant, testPromptFileConstant), []byte("review"), 0o644))

	executor := &recordingGitExecutor{statusSequence: []string{"?? .gitignore\n"}}
	service, serviceError := dependencies.ResolveDistributionService(fileSystem, executor, zap.NewNop())
	require.NoError(testInstance, serviceError)

	options := distribution.DefaultCopyOptions()
	options.SyncGuidelines = false
	summary, distributeError := service.DistributeCopies(
		context.Background(),
		testSourceRootConstant,
		[]targets.SyncTarget{{RepositoryPath: testRepositoryPathConstant, PromptFiles: []string{testPromptFileConstant}}},
		options,
	)
	require.NoError(testInstance, distributeError)
	require.Len(testInstance, summary.Outcomes, 1)
	require.True(testInstance, summary.Outcomes[0].MarkerCommitted)
	require.Equal(testInstance, []string{testPromptFileConstant}, summary.Outcomes[0].CopiedFiles)

	copiedContent, readError := afero.ReadFile(fileSystem, filepath.Join(layout.DistributionPath(testRepositoryPathConstant), testPromptFileConstant))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "review", string(copiedContent))

	require.Len(testInstance, executor.invocations, 3)
	require.Equal(testInstance, []string{"add", "--", ".gitignore"}, executor.invocations[1].Arguments)
	require.Equal(testInstance, []string{"commit", "-m", distribution.CopyMarkerCommitMessage, "--", ".gitignore"}, executor.invocations[2].Arguments)
}
