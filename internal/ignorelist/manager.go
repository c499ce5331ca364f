package ignorelist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/promptsync/internal/layout"
)

const (
	lineTerminatorConstant                = "\n"
	ignoreListFilePermissionsConstant     = fs.FileMode(0o644)
	ignoreListReadErrorTemplateConstant   = "unable to read ignore-list %s: %w"
	ignoreListCreateErrorTemplateConstant = "unable to create ignore-list %s: %w"
	ignoreListAppendErrorTemplateConstant = "unable to append to ignore-list %s: %w"
	ignoreListCreatedMessageConstant      = "Created ignore-list with distribution marker"
	ignoreListAppendedMessageConstant     = "Added distribution marker to ignore-list"
	ignoreListUnchangedMessageConstant    = "Ignore-list already contains distribution marker"
	ignoreListUnreadableMessageConstant   = "Unable to read ignore-list, treating marker as absent"
	logFieldIgnoreListPathConstant        = "ignore_list_path"
	logFieldMarkerConstant                = "marker"
)

// ErrFileSystemNotConfigured indicates the manager was constructed without a filesystem.
var ErrFileSystemNotConfigured = errors.New("ignore-list filesystem not configured")

// Manager checks and updates the marker entry of project ignore-lists.
type Manager struct {
	fileSystem afero.Fs
	logger     *zap.Logger
	entry      string
}

// NewManager constructs a Manager for the shared distribution marker.
func NewManager(fileSystem afero.Fs, logger *zap.Logger) (*Manager, error) {
	return NewManagerWithEntry(fileSystem, logger, layout.MarkerEntry)
}

// NewManagerWithEntry constructs a Manager that maintains an arbitrary entry.
func NewManagerWithEntry(fileSystem afero.Fs, logger *zap.Logger, entry string) (*Manager, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{fileSystem: fileSystem, logger: logger, entry: entry}, nil
}

// HasEntry reports whether the project's ignore-list contains the entry anywhere in its text.
// A missing or unreadable file reports false.
func (manager *Manager) HasEntry(projectPath string) bool {
	ignoreListPath := layout.IgnoreListPath(projectPath)
	content, readError := afero.ReadFile(manager.fileSystem, ignoreListPath)
	if readError != nil {
		if !errors.Is(readError, fs.ErrNotExist) {
			manager.logger.Warn(ignoreListUnreadableMessageConstant, zap.String(logFieldIgnoreListPathConstant, ignoreListPath), zap.Error(readError))
		}
		return false
	}
	return strings.Contains(string(content), manager.entry)
}

// EnsureEntry adds the entry to the project's ignore-list when missing and reports whether the file changed.
func (manager *Manager) EnsureEntry(projectPath string) (bool, error) {
	ignoreListPath := layout.IgnoreListPath(projectPath)
	entryLine := manager.entry + lineTerminatorConstant

	content, readError := afero.ReadFile(manager.fileSystem, ignoreListPath)
	if readError != nil {
		if !errors.Is(readError, fs.ErrNotExist) {
			return false, fmt.Errorf(ignoreListReadErrorTemplateConstant, ignoreListPath, readError)
		}
		if writeError := afero.WriteFile(manager.fileSystem, ignoreListPath, []byte(entryLine), ignoreListFilePermissionsConstant); writeError != nil {
			return false, fmt.Errorf(ignoreListCreateErrorTemplateConstant, ignoreListPath, writeError)
		}
		manager.logger.Info(ignoreListCreatedMessageConstant, zap.String(logFieldIgnoreListPathConstant, ignoreListPath), zap.String(logFieldMarkerConstant, manager.entry))
		return true, nil
	}

	existingContent := string(content)
	if strings.Contains(existingContent, manager.entry) {
		manager.logger.Debug(ignoreListUnchangedMessageConstant, zap.String(logFieldIgnoreListPathConstant, ignoreListPath))
		return false, nil
	}

	addition := entryLine
	if len(existingContent) > 0 && !strings.HasSuffix(existingContent, lineTerminatorConstant) {
		addition = lineTerminatorConstant + entryLine
	}

	ignoreListFile, openError := manager.fileSystem.OpenFile(ignoreListPath, os.O_APPEND|os.O_WRONLY, ignoreListFilePermissionsConstant)
	if openError != nil {
		return false, fmt.Errorf(ignoreListAppendErrorTemplateConstant, ignoreListPath, openError)
	}

	_, writeError := ignoreListFile.WriteString(addition)
	closeError := ignoreListFile.Close()
	if writeError != nil {
		return false, fmt.Errorf(ignoreListAppendErrorTemplateConstant, ignoreListPath, writeError)
	}
	if closeError != nil {
		return false, fmt.Errorf(ignoreListAppendErrorTemplateConstant, ignoreListPath, closeError)
	}

	manager.logger.Info(ignoreListAppendedMessageConstant, zap.String(logFieldIgnoreListPathConstant, ignoreListPath), zap.String(logFieldMarkerConstant, manager.entry))
	return true, nil
}
