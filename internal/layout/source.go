package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	pathutils "github.com/temirov/promptsync/internal/utils/path"
)

const (
	executableLocationErrorTemplateConstant = "unable to locate promptsync executable: %w"
	sourceAbsolutePathErrorTemplateConstant = "unable to resolve canonical source %s: %w"
	sourceMissingErrorTemplateConstant      = "%w: %s"
)

var (
	// ErrCanonicalSourceMissing indicates the canonical source directory does not exist or is not a directory.
	ErrCanonicalSourceMissing = errors.New("canonical source directory not found")
)

// ExecutableLocator reports the absolute path of the running executable.
type ExecutableLocator func() (string, error)

// DefaultExecutableLocator resolves the running executable and follows symbolic links to its real location.
func DefaultExecutableLocator() (string, error) {
	executablePath, executableError := os.Executable()
	if executableError != nil {
		return "", executableError
	}
	return filepath.EvalSymlinks(executablePath)
}

// SourceResolver determines the canonical source directory for a run.
type SourceResolver struct {
	fileSystem        afero.Fs
	executableLocator ExecutableLocator
	homeExpander      *pathutils.HomeExpander
}

// NewSourceResolver constructs a resolver. Nil collaborators fall back to the operating system.
func NewSourceResolver(fileSystem afero.Fs, executableLocator ExecutableLocator) *SourceResolver {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if executableLocator == nil {
		executableLocator = DefaultExecutableLocator
	}
	return &SourceResolver{
		fileSystem:        fileSystem,
		executableLocator: executableLocator,
		homeExpander:      pathutils.NewHomeExpander(),
	}
}

// Resolve returns the absolute canonical source directory with symbolic links followed. A non-empty override
// names the directory itself; otherwise the distribution path next to the executable is used.
func (resolver *SourceResolver) Resolve(overrideDirectory string) (string, error) {
	candidatePath := strings.TrimSpace(overrideDirectory)
	if len(candidatePath) > 0 {
		candidatePath = resolver.homeExpander.Expand(candidatePath)
	} else {
		executablePath, locateError := resolver.executableLocator()
		if locateError != nil {
			return "", fmt.Errorf(executableLocationErrorTemplateConstant, locateError)
		}
		candidatePath = DistributionPath(filepath.Dir(executablePath))
	}

	absolutePath, absoluteError := filepath.Abs(candidatePath)
	if absoluteError != nil {
		return "", fmt.Errorf(sourceAbsolutePathErrorTemplateConstant, candidatePath, absoluteError)
	}

	sourceInfo, statError := resolver.fileSystem.Stat(absolutePath)
	if statError != nil || !sourceInfo.IsDir() {
		return "", fmt.Errorf(sourceMissingErrorTemplateConstant, ErrCanonicalSourceMissing, absolutePath)
	}

	resolvedPath, resolveError := pathutils.ResolveSymlinks(resolver.fileSystem, absolutePath)
	if resolveError != nil {
		return "", fmt.Errorf(sourceAbsolutePathErrorTemplateConstant, absolutePath, resolveError)
	}
	return resolvedPath, nil
}
