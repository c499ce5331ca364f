package distribution

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	sourceDirectoryMissingMessageConstant   = "Source directory not found"
	sourceEntryNotDirectoryMessageConstant  = "Source path is not a directory"
	destinationPrepareFailedMessageConstant = "Failed to prepare destination directory"
	destinationRemoveFailedMessageConstant  = "Failed to remove existing directory"
	directoryCopyFailedMessageConstant      = "Failed to copy directory"
	directoryUnchangedMessageConstant       = "Directory already matches source"
	directoryCopiedMessageConstant          = "Copied directory"
	sourceFileMissingMessageConstant        = "Source file not found"
	sourceFileIsDirectoryMessageConstant    = "Source path is a directory, not a file"
	comparisonFailedMessageConstant         = "Failed to compare files, overwriting"
	fileUnchangedMessageConstant            = "File unchanged"
	fileCopyFailedMessageConstant           = "Failed to copy file"
	fileCopiedMessageConstant               = "Copied file"
	logFieldSourcePathConstant              = "source_path"
	logFieldDestinationPathConstant         = "destination_path"
	logFieldRelativePathConstant            = "relative_path"
	backslashSeparatorConstant              = `\`
	forwardSlashSeparatorConstant           = "/"
	directoryPermissionsConstant            = 0o755
	copyFileErrorTemplateConstant           = "copy %s to %s: %w"
	treeDigestErrorTemplateConstant         = "digest %s: %w"
)

// ErrCopierFileSystemNotConfigured indicates the copier was constructed without a filesystem.
var ErrCopierFileSystemNotConfigured = errors.New("copier file system not configured")

// Copier copies directories and files between filesystem locations.
type Copier struct {
	fileSystem afero.Fs
	logger     *zap.Logger
}

// NewCopier constructs a Copier.
func NewCopier(fileSystem afero.Fs, logger *zap.Logger) (*Copier, error) {
	if fileSystem == nil {
		return nil, ErrCopierFileSystemNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Copier{fileSystem: fileSystem, logger: logger}, nil
}

// CopyDirectory replaces destinationRoot/name with a full copy of sourceRoot/name.
// Failures are logged and reported as false.
func (copier *Copier) CopyDirectory(sourceRoot string, destinationRoot string, name string) bool {
	return copier.SyncDirectory(sourceRoot, destinationRoot, name, false)
}

// SyncDirectory behaves like CopyDirectory. When detectChanges is set, a destination whose
// relative paths and file digests already match the source is left untouched and false is returned.
func (copier *Copier) SyncDirectory(sourceRoot string, destinationRoot string, name string, detectChanges bool) bool {
	sourceDirectory := filepath.Join(sourceRoot, name)
	destinationDirectory := filepath.Join(destinationRoot, name)

	sourceInfo, statError := copier.fileSystem.Stat(sourceDirectory)
	if statError != nil {
		copier.logger.Error(sourceDirectoryMissingMessageConstant, zap.String(logFieldSourcePathConstant, sourceDirectory), zap.Error(statError))
		return false
	}
	if !sourceInfo.IsDir() {
		copier.logger.Error(sourceEntryNotDirectoryMessageConstant, zap.String(logFieldSourcePathConstant, sourceDirectory))
		return false
	}

	if mkdirError := copier.fileSystem.MkdirAll(destinationRoot, directoryPermissionsConstant); mkdirError != nil {
		copier.logger.Error(destinationPrepareFailedMessageConstant, zap.String(logFieldDestinationPathConstant, destinationRoot), zap.Error(mkdirError))
		return false
	}

	if detectChanges && copier.treesMatch(sourceDirectory, destinationDirectory) {
		copier.logger.Debug(directoryUnchangedMessageConstant, zap.String(logFieldDestinationPathConstant, destinationDirectory))
		return false
	}

	if removeError := copier.fileSystem.RemoveAll(destinationDirectory); removeError != nil {
		copier.logger.Error(destinationRemoveFailedMessageConstant, zap.String(logFieldDestinationPathConstant, destinationDirectory), zap.Error(removeError))
		return false
	}

	if copyError := copier.copyTree(sourceDirectory, destinationDirectory); copyError != nil {
		copier.logger.Error(directoryCopyFailedMessageConstant, zap.String(logFieldSourcePathConstant, sourceDirectory), zap.String(logFieldDestinationPathConstant, destinationDirectory), zap.Error(copyError))
		return false
	}

	copier.logger.Debug(directoryCopiedMessageConstant, zap.String(logFieldSourcePathConstant, sourceDirectory), zap.String(logFieldDestinationPathConstant, destinationDirectory))
	return true
}

// CopyFiles copies each relative path from sourceRoot to destinationRoot, skipping destinations with identical bytes.
// Paths may use either separator convention. The returned slice holds the paths actually written, in input order.
func (copier *Copier) CopyFiles(sourceRoot string, destinationRoot string, relativePaths []string) []string {
	copiedPaths := make([]string, 0, len(relativePaths))
	for _, relativePath := range relativePaths {
		normalizedPath := NormalizeRelativePath(relativePath)
		sourcePath := filepath.Join(sourceRoot, normalizedPath)
		destinationPath := filepath.Join(destinationRoot, normalizedPath)

		sourceInfo, statError := copier.fileSystem.Stat(sourcePath)
		if statError != nil {
			copier.logger.Warn(sourceFileMissingMessageConstant, zap.String(logFieldSourcePathConstant, sourcePath))
			continue
		}
		if sourceInfo.IsDir() {
			copier.logger.Warn(sourceFileIsDirectoryMessageConstant, zap.String(logFieldSourcePathConstant, sourcePath))
			continue
		}

		if mkdirError := copier.fileSystem.MkdirAll(filepath.Dir(destinationPath), directoryPermissionsConstant); mkdirError != nil {
			copier.logger.Error(destinationPrepareFailedMessageConstant, zap.String(logFieldDestinationPathConstant, filepath.Dir(destinationPath)), zap.Error(mkdirError))
			continue
		}

		if copier.destinationMatches(sourcePath, destinationPath) {
			copier.logger.Debug(fileUnchangedMessageConstant, zap.String(logFieldRelativePathConstant, relativePath))
			continue
		}

		if copyError := copier.copyFile(sourcePath, destinationPath, sourceInfo); copyError != nil {
			copier.logger.Error(fileCopyFailedMessageConstant, zap.String(logFieldRelativePathConstant, relativePath), zap.Error(copyError))
			continue
		}

		copier.logger.Debug(fileCopiedMessageConstant, zap.String(logFieldSourcePathConstant, sourcePath), zap.String(logFieldDestinationPathConstant, destinationPath))
		copiedPaths = append(copiedPaths, relativePath)
	}
	return copiedPaths
}

// NormalizeRelativePath converts "/" and "\" separators to the host convention and cleans the result.
func NormalizeRelativePath(relativePath string) string {
	slashPath := strings.ReplaceAll(relativePath, backslashSeparatorConstant, forwardSlashSeparatorConstant)
	return filepath.Clean(filepath.FromSlash(slashPath))
}

func (copier *Copier) destinationMatches(sourcePath string, destinationPath string) bool {
	if _, statError := copier.fileSystem.Stat(destinationPath); statError != nil {
		return false
	}

	sourceContent, sourceReadError := afero.ReadFile(copier.fileSystem, sourcePath)
	if sourceReadError != nil {
		copier.logger.Warn(comparisonFailedMessageConstant, zap.String(logFieldSourcePathConstant, sourcePath), zap.Error(sourceReadError))
		return false
	}
	destinationContent, destinationReadError := afero.ReadFile(copier.fileSystem, destinationPath)
	if destinationReadError != nil {
		copier.logger.Warn(comparisonFailedMessageConstant, zap.String(logFieldDestinationPathConstant, destinationPath), zap.Error(destinationReadError))
		return false
	}
	return bytes.Equal(sourceContent, destinationContent)
}

func (copier *Copier) copyFile(sourcePath string, destinationPath string, sourceInfo os.FileInfo) error {
	sourceFile, openError := copier.fileSystem.Open(sourcePath)
	if openError != nil {
		return fmt.Errorf(copyFileErrorTemplateConstant, sourcePath, destinationPath, openError)
	}
	defer sourceFile.Close()

	destinationFile, createError := copier.fileSystem.OpenFile(destinationPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, sourceInfo.Mode().Perm())
	if createError != nil {
		return fmt.Errorf(copyFileErrorTemplateConstant, sourcePath, destinationPath, createError)
	}

	if _, copyError := io.Copy(destinationFile, sourceFile); copyError != nil {
		destinationFile.Close()
		return fmt.Errorf(copyFileErrorTemplateConstant, sourcePath, destinationPath, copyError)
	}
	if closeError := destinationFile.Close(); closeError != nil {
		return fmt.Errorf(copyFileErrorTemplateConstant, sourcePath, destinationPath, closeError)
	}

	if chmodError := copier.fileSystem.Chmod(destinationPath, sourceInfo.Mode().Perm()); chmodError != nil {
		return fmt.Errorf(copyFileErrorTemplateConstant, sourcePath, destinationPath, chmodError)
	}
	if chtimesError := copier.fileSystem.Chtimes(destinationPath, sourceInfo.ModTime(), sourceInfo.ModTime()); chtimesError != nil {
		return fmt.Errorf(copyFileErrorTemplateConstant, sourcePath, destinationPath, chtimesError)
	}
	return nil
}

func (copier *Copier) copyTree(sourceDirectory string, destinationDirectory string) error {
	return afero.Walk(copier.fileSystem, sourceDirectory, func(currentPath string, entryInfo os.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}
		relativePath, relativeError := filepath.Rel(sourceDirectory, currentPath)
		if relativeError != nil {
			return relativeError
		}
		targetPath := filepath.Join(destinationDirectory, relativePath)

		if entryInfo.IsDir() {
			return copier.fileSystem.MkdirAll(targetPath, entryInfo.Mode().Perm()|0o700)
		}
		return copier.copyFile(currentPath, targetPath, entryInfo)
	})
}

func (copier *Copier) treesMatch(sourceDirectory string, destinationDirectory string) bool {
	destinationInfo, statError := copier.fileSystem.Stat(destinationDirectory)
	if statError != nil || !destinationInfo.IsDir() {
		return false
	}

	sourceDigests, sourceDigestError := copier.treeDigests(sourceDirectory)
	if sourceDigestError != nil {
		return false
	}
	destinationDigests, destinationDigestError := copier.treeDigests(destinationDirectory)
	if destinationDigestError != nil {
		copier.logger.Warn(comparisonFailedMessageConstant, zap.String(logFieldDestinationPathConstant, destinationDirectory), zap.Error(destinationDigestError))
		return false
	}

	if len(sourceDigests) != len(destinationDigests) {
		return false
	}
	for relativePath, sourceDigest := range sourceDigests {
		if destinationDigests[relativePath] != sourceDigest {
			return false
		}
	}
	return true
}

func (copier *Copier) treeDigests(rootDirectory string) (map[string][sha256.Size]byte, error) {
	digests := make(map[string][sha256.Size]byte)
	walkError := afero.Walk(copier.fileSystem, rootDirectory, func(currentPath string, entryInfo os.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if entryInfo.IsDir() {
			return nil
		}
		relativePath, relativeError := filepath.Rel(rootDirectory, currentPath)
		if relativeError != nil {
			return relativeError
		}
		fileContent, readError := afero.ReadFile(copier.fileSystem, currentPath)
		if readError != nil {
			return readError
		}
		digests[filepath.ToSlash(relativePath)] = sha256.Sum256(fileContent)
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(treeDigestErrorTemplateConstant, rootDirectory, walkError)
	}
	return digests, nil
}
