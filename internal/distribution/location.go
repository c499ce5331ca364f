package distribution

import (
	"path/filepath"

	"github.com/spf13/afero"

	pathutils "github.com/temirov/promptsync/internal/utils/path"
)

// entryLocation resolves the parent of entryPath but keeps its final element, so a symlink entry
// reports where the link itself lives rather than where it points.
func entryLocation(fileSystem afero.Fs, entryPath string) (string, error) {
	cleanPath := filepath.Clean(entryPath)
	parentPath, resolveError := pathutils.ResolveSymlinks(fileSystem, filepath.Dir(cleanPath))
	if resolveError != nil {
		return "", resolveError
	}
	return filepath.Join(parentPath, filepath.Base(cleanPath)), nil
}
