package targets

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	pathutils "github.com/temirov/promptsync/internal/utils/path"
)

const (
	targetsFileMissingTemplateConstant  = "%w: %s"
	targetsFileReadTemplateConstant     = "unable to read targets file %s: %w"
	targetsFileDecodeTemplateConstant   = "unable to decode targets file %s: %w"
	targetsFileInvalidTemplateConstant  = "%s: %w"
	linkTargetCommentPrefixConstant     = "#"
	linkTargetLineSeparatorConstant     = "\n"
	linkTargetCarriageReturnConstant    = "\r"
	promptPathWhitespaceTrimSetConstant = " \t"
)

var (
	// ErrTargetsFileMissing indicates the targets file does not exist.
	ErrTargetsFileMissing = errors.New("targets file not found")
	// ErrFileSystemNotConfigured indicates the loader was constructed without a filesystem.
	ErrFileSystemNotConfigured = errors.New("targets file system not configured")
)

// Loader reads copy and link targets from disk.
type Loader struct {
	fileSystem    afero.Fs
	pathSanitizer *pathutils.TargetPathSanitizer
}

// NewLoader constructs a Loader. A nil sanitizer expands "~" using the operating system home directory.
func NewLoader(fileSystem afero.Fs, pathSanitizer *pathutils.TargetPathSanitizer) (*Loader, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if pathSanitizer == nil {
		pathSanitizer = pathutils.NewTargetPathSanitizer(nil)
	}
	return &Loader{fileSystem: fileSystem, pathSanitizer: pathSanitizer}, nil
}

// LoadCopyTargets reads, validates and decodes a copy targets document. Records keep their document order.
func (loader *Loader) LoadCopyTargets(targetsFilePath string) ([]SyncTarget, error) {
	documentContent, readError := loader.readTargetsFile(targetsFilePath)
	if readError != nil {
		return nil, readError
	}

	if validationError := ValidateDocument(documentContent); validationError != nil {
		return nil, fmt.Errorf(targetsFileInvalidTemplateConstant, targetsFilePath, validationError)
	}

	var records []syncTargetRecord
	if decodeError := yaml.Unmarshal(documentContent, &records); decodeError != nil {
		return nil, fmt.Errorf(targetsFileDecodeTemplateConstant, targetsFilePath, decodeError)
	}

	syncTargets := make([]SyncTarget, 0, len(records))
	for _, record := range records {
		promptFiles := make([]string, 0, len(record.Prompts))
		for _, promptFile := range record.Prompts {
			trimmedPromptFile := strings.Trim(promptFile, promptPathWhitespaceTrimSetConstant)
			if len(trimmedPromptFile) == 0 {
				continue
			}
			promptFiles = append(promptFiles, trimmedPromptFile)
		}
		syncTargets = append(syncTargets, SyncTarget{
			RepositoryPath: loader.pathSanitizer.SanitizePath(record.RepositoryPath),
			PromptFiles:    promptFiles,
		})
	}
	return syncTargets, nil
}

// LoadLinkTargets reads one target directory per line. Blank lines and lines starting with "#" are ignored;
// a file with no target lines yields nil.
func (loader *Loader) LoadLinkTargets(targetsFilePath string) ([]string, error) {
	documentContent, readError := loader.readTargetsFile(targetsFilePath)
	if readError != nil {
		return nil, readError
	}

	candidatePaths := make([]string, 0)
	for _, line := range strings.Split(string(documentContent), linkTargetLineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(strings.TrimSuffix(line, linkTargetCarriageReturnConstant))
		if strings.HasPrefix(trimmedLine, linkTargetCommentPrefixConstant) {
			continue
		}
		candidatePaths = append(candidatePaths, trimmedLine)
	}
	return loader.pathSanitizer.Sanitize(candidatePaths), nil
}

func (loader *Loader) readTargetsFile(targetsFilePath string) ([]byte, error) {
	documentContent, readError := afero.ReadFile(loader.fileSystem, targetsFilePath)
	if readError == nil {
		return documentContent, nil
	}
	if errors.Is(readError, fs.ErrNotExist) {
		return nil, fmt.Errorf(targetsFileMissingTemplateConstant, ErrTargetsFileMissing, targetsFilePath)
	}
	return nil, fmt.Errorf(targetsFileReadTemplateConstant, targetsFilePath, readError)
}
