package distribution_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/promptsync/internal/distribution"
)

const (
	testSourceRootConstant           = "/canonical/.cursor/rules/global_prompts"
	testDestinationRootConstant      = "/workspace/p1/.cursor/rules/global_prompts"
	testGuidelinesDirectoryConstant  = "programming_guidelines"
	testPromptFileConstant           = "a.md"
	testNestedPromptFileConstant     = `nested\b.md`
	testPromptContentConstant        = "X"
	testStalePromptContentConstant   = "stale"
	testSourceMissingMessageConstant = "Source file not found"
)

var (
	testSourceModificationTime      = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	testDestinationModificationTime = time.Date(2023, time.January, 5, 8, 30, 0, 0, time.UTC)
)

func writeTestFile(testInstance *testing.T, fileSystem afero.Fs, filePath string, content string, modificationTime time.Time) {
	testInstance.Helper()
	require.NoError(testInstance, fileSystem.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(testInstance, afero.WriteFile(fileSystem, filePath, []byte(content), 0o644))
	require.NoError(testInstance, fileSystem.Chtimes(filePath, modificationTime, modificationTime))
}

func readTestFile(testInstance *testing.T, fileSystem afero.Fs, filePath string) string {
	testInstance.Helper()
	content, readError := afero.ReadFile(fileSystem, filePath)
	require.NoError(testInstance, readError)
	return string(content)
}

func newTestCopier(testInstance *testing.T, fileSystem afero.Fs, logger *zap.Logger) *distribution.Copier {
	testInstance.Helper()
	copier, copierError := distribution.NewCopier(fileSystem, logger)
	require.NoError(testInstance, copierError)
	return copier
}

func TestNewCopierRequiresFileSystem(testInstance *testing.T) {
	copier, copierError := distribution.NewCopier(nil, zap.NewNop())
	require.Nil(testInstance, copier)
	require.ErrorIs(testInstance, copierError, distribution.ErrCopierFileSystemNotConfigured)
}

func TestCopyFilesDecisions(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		existingDestination  *string
		expectedCopied       []string
		expectedModification time.Time
	}{
		{
			name:                 "missing_destination_is_copied",
			existingDestination:  nil,
			expectedCopied:       []string{testPromptFileConstant},
			expectedModification: testSourceModificationTime,
		},
		{
			name:                 "differing_destination_is_overwritten",
			existingDestination:  stringPointer(testStalePromptContentConstant),
			expectedCopied:       []string{testPromptFileConstant},
			expectedModification: testSourceModificationTime,
		},
		{
			name:                 "identical_destination_is_skipped",
			existingDestination:  stringPointer(testPromptContentConstant),
			expectedCopied:       []string{},
			expectedModification: testDestinationModificationTime,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fileSystem := afero.NewMemMapFs()
			sourcePath := filepath.Join(testSourceRootConstant, testPromptFileConstant)
			destinationPath := filepath.Join(testDestinationRootConstant, testPromptFileConstant)
			writeTestFile(testInstance, fileSystem, sourcePath, testPromptContentConstant, testSourceModificationTime)
			if testCase.existingDestination != nil {
				writeTestFile(testInstance, fileSystem, destinationPath, *testCase.existingDestination, testDestinationModificationTime)
			}

			copiedPaths := newTestCopier(testInstance, fileSystem, zap.NewNop()).CopyFiles(testSourceRootConstant, testDestinationRootConstant, []string{testPromptFileConstant})

			require.Equal(testInstance, testCase.expectedCopied, copiedPaths)
			require.Equal(testInstance, testPromptContentConstant, readTestFile(testInstance, fileSystem, destinationPath))

			destinationInfo, statError := fileSystem.Stat(destinationPath)
			require.NoError(testInstance, statError)
			require.True(testInstance, testCase.expectedModification.Equal(destinationInfo.ModTime()))
		})
	}
}

var errTestPermissionDenied = errors.New("permission denied")

type faultyFileSystem struct {
	afero.Fs
	unreadablePath string
	unwritablePath string
}

func (fileSystem *faultyFileSystem) Open(name string) (afero.File, error) {
	if name == fileSystem.unreadablePath {
		return nil, &os.PathError{Op: "open", Path: name, Err: errTestPermissionDenied}
	}
	return fileSystem.Fs.Open(name)
}

func (fileSystem *faultyFileSystem) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name == fileSystem.unwritablePath {
		return nil, &os.PathError{Op: "open", Path: name, Err: errTestPermissionDenied}
	}
	return fileSystem.Fs.OpenFile(name, flag, perm)
}

func TestCopyFilesFailureHandling(testInstance *testing.T) {
	sourcePath := filepath.Join(testSourceRootConstant, testPromptFileConstant)
	destinationPath := filepath.Join(testDestinationRootConstant, testPromptFileConstant)

	testCases := []struct {
		name               string
		unreadablePath     string
		unwritablePath     string
		expectedCopied     []string
		expectedContent    string
		expectedWarnings   int
		expectedCopyErrors int
	}{
		{
			name:             "unreadable_destination_is_treated_as_different",
			unreadablePath:   destinationPath,
			expectedCopied:   []string{testPromptFileConstant},
			expectedContent:  testPromptContentConstant,
			expectedWarnings: 1,
		},
		{
			name:               "unreadable_source_is_not_recorded",
			unreadablePath:     sourcePath,
			expectedCopied:     []string{},
			expectedContent:    testStalePromptContentConstant,
			expectedWarnings:   1,
			expectedCopyErrors: 1,
		},
		{
			name:               "failed_write_is_not_recorded",
			unwritablePath:     destinationPath,
			expectedCopied:     []string{},
			expectedContent:    testStalePromptContentConstant,
			expectedCopyErrors: 1,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			memoryFileSystem := afero.NewMemMapFs()
			writeTestFile(subtest, memoryFileSystem, sourcePath, testPromptContentConstant, testSourceModificationTime)
			writeTestFile(subtest, memoryFileSystem, destinationPath, testStalePromptContentConstant, testDestinationModificationTime)
			fileSystem := &faultyFileSystem{Fs: memoryFileSystem, unreadablePath: testCase.unreadablePath, unwritablePath: testCase.unwritablePath}

			observerCore, observedLogs := observer.New(zapcore.WarnLevel)
			copiedPaths := newTestCopier(subtest, fileSystem, zap.New(observerCore)).CopyFiles(testSourceRootConstant, testDestinationRootConstant, []string{testPromptFileConstant})

			require.Equal(subtest, testCase.expectedCopied, copiedPaths)
			require.Equal(subtest, testCase.expectedContent, readTestFile(subtest, memoryFileSystem, destinationPath))
			require.Len(subtest, observedLogs.FilterMessage("Failed to compare files, overwriting").All(), testCase.expectedWarnings)

			copyErrors := observedLogs.FilterMessage("Failed to copy file").All()
			require.Len(subtest, copyErrors, testCase.expectedCopyErrors)
			for _, copyError := range copyErrors {
				require.Equal(subtest, zapcore.ErrorLevel, copyError.Level)
			}
		})
	}
}

func TestCopyFilesNormalizesSeparatorsAndSkipsMissingSources(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	writeTestFile(testInstance, fileSystem, filepath.Join(testSourceRootConstant, "nested", "b.md"), testPromptContentConstant, testSourceModificationTime)
	writeTestFile(testInstance, fileSystem, filepath.Join(testSourceRootConstant, testPromptFileConstant), testPromptContentConstant, testSourceModificationTime)

	observerCore, observedLogs := observer.New(zapcore.WarnLevel)
	copier := newTestCopier(testInstance, fileSystem, zap.New(observerCore))

	copiedPaths := copier.CopyFiles(testSourceRootConstant, testDestinationRootConstant, []string{"missing.md", testNestedPromptFileConstant, testPromptFileConstant})

	require.Equal(testInstance, []string{testNestedPromptFileConstant, testPromptFileConstant}, copiedPaths)
	require.Equal(testInstance, testPromptContentConstant, readTestFile(testInstance, fileSystem, filepath.Join(testDestinationRootConstant, "nested", "b.md")))

	missingEntries := observedLogs.FilterMessage(testSourceMissingMessageConstant).All()
	require.Len(testInstance, missingEntries, 1)

	exists, existsError := afero.Exists(fileSystem, filepath.Join(testDestinationRootConstant, "missing.md"))
	require.NoError(testInstance, existsError)
	require.False(testInstance, exists)
}

func TestNormalizeRelativePath(testInstance *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectedPath string
	}{
		{name: "forward_slashes", input: "nested/deeper/c.md", expectedPath: filepath.Join("nested", "deeper", "c.md")},
		{name: "backslashes", input: `nested\deeper\c.md`, expectedPath: filepath.Join("nested", "deeper", "c.md")},
		{name: "mixed_and_redundant", input: `nested\./deeper//c.md`, expectedPath: filepath.Join("nested", "deeper", "c.md")},
		{name: "plain_file", input: testPromptFileConstant, expectedPath: testPromptFileConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, distribution.NormalizeRelativePath(testCase.input))
		})
	}
}

func TestCopyDirectoryConvergesAcrossRuns(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	sourceGuidelines := filepath.Join(testSourceRootConstant, testGuidelinesDirectoryConstant)
	writeTestFile(testInstance, fileSystem, filepath.Join(sourceGuidelines, "go.md"), "go rules", testSourceModificationTime)
	writeTestFile(testInstance, fileSystem, filepath.Join(sourceGuidelines, "web", "css.md"), "css rules", testSourceModificationTime)

	destinationGuidelines := filepath.Join(testDestinationRootConstant, testGuidelinesDirectoryConstant)
	writeTestFile(testInstance, fileSystem, filepath.Join(destinationGuidelines, "local-only.md"), "customized", testDestinationModificationTime)

	copier := newTestCopier(testInstance, fileSystem, zap.NewNop())

	for runIndex := 0; runIndex < 2; runIndex++ {
		require.True(testInstance, copier.CopyDirectory(testSourceRootConstant, testDestinationRootConstant, testGuidelinesDirectoryConstant))
		require.Equal(testInstance, "go rules", readTestFile(testInstance, fileSystem, filepath.Join(destinationGuidelines, "go.md")))
		require.Equal(testInstance, "css rules", readTestFile(testInstance, fileSystem, filepath.Join(destinationGuidelines, "web", "css.md")))

		exists, existsError := afero.Exists(fileSystem, filepath.Join(destinationGuidelines, "local-only.md"))
		require.NoError(testInstance, existsError)
		require.False(testInstance, exists)
	}
}

func TestCopyDirectoryReportsInvalidSource(testInstance *testing.T) {
	testCases := []struct {
		name          string
		prepareSource func(testInstance *testing.T, fileSystem afero.Fs)
	}{
		{
			name:          "missing_source",
			prepareSource: func(testInstance *testing.T, fileSystem afero.Fs) {},
		},
		{
			name: "source_is_file",
			prepareSource: func(testInstance *testing.T, fileSystem afero.Fs) {
				writeTestFile(testInstance, fileSystem, filepath.Join(testSourceRootConstant, testGuidelinesDirectoryConstant), "not a directory", testSourceModificationTime)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fileSystem := afero.NewMemMapFs()
			testCase.prepareSource(testInstance, fileSystem)

			observerCore, observedLogs := observer.New(zapcore.ErrorLevel)
			copier := newTestCopier(testInstance, fileSystem, zap.New(observerCore))

			require.False(testInstance, copier.CopyDirectory(testSourceRootConstant, testDestinationRootConstant, testGuidelinesDirectoryConstant))
			require.Equal(testInstance, 1, observedLogs.Len())
		})
	}
}

func TestSyncDirectoryWithChangeDetection(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	sourceGuidelines := filepath.Join(testSourceRootConstant, testGuidelinesDirectoryConstant)
	destinationGuidelines := filepath.Join(testDestinationRootConstant, testGuidelinesDirectoryConstant)
	writeTestFile(testInstance, fileSystem, filepath.Join(sourceGuidelines, "go.md"), "go rules", testSourceModificationTime)

	copier := newTestCopier(testInstance, fileSystem, zap.NewNop())

	require.True(testInstance, copier.SyncDirectory(testSourceRootConstant, testDestinationRootConstant, testGuidelinesDirectoryConstant, true))
	require.False(testInstance, copier.SyncDirectory(testSourceRootConstant, testDestinationRootConstant, testGuidelinesDirectoryConstant, true))

	writeTestFile(testInstance, fileSystem, filepath.Join(destinationGuidelines, "extra.md"), "extra", testDestinationModificationTime)
	require.True(testInstance, copier.SyncDirectory(testSourceRootConstant, testDestinationRootConstant, testGuidelinesDirectoryConstant, true))

	exists, existsError := afero.Exists(fileSystem, filepath.Join(destinationGuidelines, "extra.md"))
	require.NoError(testInstance, existsError)
	require.False(testInstance, exists)

	writeTestFile(testInstance, fileSystem, filepath.Join(sourceGuidelines, "go.md"), "updated go rules", testSourceModificationTime)
	require.True(testInstance, copier.SyncDirectory(testSourceRootConstant, testDestinationRootConstant, testGuidelinesDirectoryConstant, true))
	require.Equal(testInstance, "updated go rules", readTestFile(testInstance, fileSystem, filepath.Join(destinationGuidelines, "go.md")))
}

func stringPointer(value string) *string {
	return &value
}
