package distribution

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	inspectTargetErrorTemplateConstant      = "inspect %s: %w"
	removeTargetErrorTemplateConstant       = "remove %s: %w"
	prepareParentErrorTemplateConstant      = "create parent of %s: %w"
	createSymlinkErrorTemplateConstant      = "link %s to %s: %w"
	existingDirectoryRemovedMessageConstant = "Removed existing directory"
	existingEntryRemovedMessageConstant     = "Removed existing entry"
	symlinkCreatedMessageConstant           = "Created symlink"
	logFieldLinkTargetConstant              = "link_path"
	logFieldLinkSourceConstant              = "link_source"
)

var (
	// ErrLinkerFileSystemNotConfigured indicates the linker was constructed without a filesystem.
	ErrLinkerFileSystemNotConfigured = errors.New("linker file system not configured")
	// ErrSymlinkUnsupported indicates the configured filesystem cannot create symbolic links.
	ErrSymlinkUnsupported = errors.New("file system does not support symbolic links")
)

// Linker replaces filesystem entries with directory symbolic links.
type Linker struct {
	fileSystem afero.Fs
	logger     *zap.Logger
}

// NewLinker constructs a Linker.
func NewLinker(fileSystem afero.Fs, logger *zap.Logger) (*Linker, error) {
	if fileSystem == nil {
		return nil, ErrLinkerFileSystemNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Linker{fileSystem: fileSystem, logger: logger}, nil
}

// CreateSymlink makes linkPath a symbolic link to sourcePath. A real directory at linkPath is removed
// recursively and any other entry, including an existing symlink, is unlinked first.
func (linker *Linker) CreateSymlink(sourcePath string, linkPath string) error {
	symlinkCreator, supportsSymlinks := linker.fileSystem.(afero.Linker)
	if !supportsSymlinks {
		return ErrSymlinkUnsupported
	}

	if removeError := linker.removeExistingEntry(linkPath); removeError != nil {
		return removeError
	}

	if mkdirError := linker.fileSystem.MkdirAll(filepath.Dir(linkPath), directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(prepareParentErrorTemplateConstant, linkPath, mkdirError)
	}

	if symlinkError := symlinkCreator.SymlinkIfPossible(sourcePath, linkPath); symlinkError != nil {
		return fmt.Errorf(createSymlinkErrorTemplateConstant, linkPath, sourcePath, symlinkError)
	}

	linker.logger.Debug(symlinkCreatedMessageConstant, zap.String(logFieldLinkTargetConstant, linkPath), zap.String(logFieldLinkSourceConstant, sourcePath))
	return nil
}

func (linker *Linker) removeExistingEntry(linkPath string) error {
	entryInfo, inspectError := linker.lstat(linkPath)
	if errors.Is(inspectError, fs.ErrNotExist) {
		return nil
	}
	if inspectError != nil {
		return fmt.Errorf(inspectTargetErrorTemplateConstant, linkPath, inspectError)
	}

	if entryInfo.IsDir() {
		if removeError := linker.fileSystem.RemoveAll(linkPath); removeError != nil {
			return fmt.Errorf(removeTargetErrorTemplateConstant, linkPath, removeError)
		}
		linker.logger.Debug(existingDirectoryRemovedMessageConstant, zap.String(logFieldLinkTargetConstant, linkPath))
		return nil
	}

	if removeError := linker.fileSystem.Remove(linkPath); removeError != nil {
		return fmt.Errorf(removeTargetErrorTemplateConstant, linkPath, removeError)
	}
	linker.logger.Debug(existingEntryRemovedMessageConstant, zap.String(logFieldLinkTargetConstant, linkPath))
	return nil
}

func (linker *Linker) lstat(entryPath string) (os.FileInfo, error) {
	if lstater, supportsLstat := linker.fileSystem.(afero.Lstater); supportsLstat {
		entryInfo, _, lstatError := lstater.LstatIfPossible(entryPath)
		return entryInfo, lstatError
	}
	return linker.fileSystem.Stat(entryPath)
}
