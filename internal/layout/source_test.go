package layout_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/promptsync/internal/layout"
)

const (
	testExecutableNameConstant           = "promptsync"
	testOverrideDirectoryNameConstant    = "shared-prompts"
	testExecutableFailureMessageConstant = "executable lookup failed"
	testCaseExecutableDirectoryConstant  = "executable_directory"
	testCaseOverrideDirectoryConstant    = "override_directory"
	testCaseMissingSourceConstant        = "missing_source"
	testCaseOverrideIsFileConstant       = "override_is_file"
	testCaseLocatorFailureConstant       = "locator_failure"
	testCaseOverrideSymlinkConstant      = "override_symlink_is_followed"
	testOverrideLinkNameConstant         = "prompts-link"
	testPlainFileNameConstant            = "not-a-directory"
	testMarkerExpectationConstant        = ".cursor/rules/global_prompts"
	testDistributionParentSuffixConstant = ".cursor" + string(os.PathSeparator) + "rules"
)

func TestMarkerEntryUsesForwardSlashes(testInstance *testing.T) {
	require.Equal(testInstance, testMarkerExpectationConstant, layout.MarkerEntry)
	require.Equal(testInstance, filepath.Join("project", ".cursor", "rules", "global_prompts"), layout.DistributionPath("project"))
	require.Equal(testInstance, filepath.Join("project", testDistributionParentSuffixConstant), layout.DistributionParentPath("project"))
	require.Equal(testInstance, filepath.Join("project", ".gitignore"), layout.IgnoreListPath("project"))
}

func TestSourceResolverResolve(testInstance *testing.T) {
	installDirectory := testInstance.TempDir()
	executableSource := layout.DistributionPath(installDirectory)
	require.NoError(testInstance, os.MkdirAll(executableSource, 0o755))

	overrideDirectory := filepath.Join(testInstance.TempDir(), testOverrideDirectoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(overrideDirectory, 0o755))

	plainFilePath := filepath.Join(testInstance.TempDir(), testPlainFileNameConstant)
	require.NoError(testInstance, os.WriteFile(plainFilePath, []byte("x"), 0o644))

	emptyInstallDirectory := testInstance.TempDir()

	overrideLinkPath := filepath.Join(testInstance.TempDir(), testOverrideLinkNameConstant)
	require.NoError(testInstance, os.Symlink(overrideDirectory, overrideLinkPath))

	resolvedExecutableSource := evaluatedPath(testInstance, executableSource)
	resolvedOverrideDirectory := evaluatedPath(testInstance, overrideDirectory)

	testCases := []struct {
		name          string
		locator       layout.ExecutableLocator
		override      string
		expectedPath  string
		expectedError error
		expectAnyErr  bool
	}{
		{
			name: testCaseExecutableDirectoryConstant,
			locator: func() (string, error) {
				return filepath.Join(installDirectory, testExecutableNameConstant), nil
			},
			expectedPath: resolvedExecutableSource,
		},
		{
			name: testCaseOverrideDirectoryConstant,
			locator: func() (string, error) {
				return "", errors.New(testExecutableFailureMessageConstant)
			},
			override:     "  " + overrideDirectory + " ",
			expectedPath: resolvedOverrideDirectory,
		},
		{
			name:         testCaseOverrideSymlinkConstant,
			override:     overrideLinkPath,
			expectedPath: resolvedOverrideDirectory,
		},
		{
			name: testCaseMissingSourceConstant,
			locator: func() (string, error) {
				return filepath.Join(emptyInstallDirectory, testExecutableNameConstant), nil
			},
			expectedError: layout.ErrCanonicalSourceMissing,
		},
		{
			name:          testCaseOverrideIsFileConstant,
			override:      plainFilePath,
			expectedError: layout.ErrCanonicalSourceMissing,
		},
		{
			name: testCaseLocatorFailureConstant,
			locator: func() (string, error) {
				return "", errors.New(testExecutableFailureMessageConstant)
			},
			expectAnyErr: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver := layout.NewSourceResolver(afero.NewOsFs(), testCase.locator)
			resolvedPath, resolveError := resolver.Resolve(testCase.override)

			switch {
			case testCase.expectedError != nil:
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
				require.Empty(testInstance, resolvedPath)
			case testCase.expectAnyErr:
				require.Error(testInstance, resolveError)
				require.Contains(testInstance, resolveError.Error(), testExecutableFailureMessageConstant)
			default:
				require.NoError(testInstance, resolveError)
				require.Equal(testInstance, testCase.expectedPath, resolvedPath)
			}
		})
	}
}

func evaluatedPath(testInstance *testing.T, directoryPath string) string {
	testInstance.Helper()
	resolvedPath, resolveError := filepath.EvalSymlinks(directoryPath)
	require.NoError(testInstance, resolveError)
	return resolvedPath
}
