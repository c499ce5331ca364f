package pathutils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	maximumSymlinkHopsConstant = 255
	parentDirectoryConstant    = ".."
	currentDirectoryConstant   = "."
)

// ErrSymlinkLoop indicates a path whose symbolic links never settle.
var ErrSymlinkLoop = errors.New("too many levels of symbolic links")

// ResolveSymlinks follows every symbolic link in entryPath the way filepath.EvalSymlinks does, using the
// filesystem's own Lstat and Readlink. A ".." element applies to the resolved parent, not the spelled one.
// Missing trailing elements are kept. Filesystems without link support return the cleaned absolute path.
func ResolveSymlinks(fileSystem afero.Fs, entryPath string) (string, error) {
	absolutePath := entryPath
	if !filepath.IsAbs(absolutePath) {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return "", workingDirectoryError
		}
		absolutePath = workingDirectory + string(filepath.Separator) + absolutePath
	}

	lstater, supportsLstat := fileSystem.(afero.Lstater)
	linkReader, supportsReadlink := fileSystem.(afero.LinkReader)
	if !supportsLstat || !supportsReadlink {
		return filepath.Clean(absolutePath), nil
	}

	volumeName := filepath.VolumeName(absolutePath)
	rootPath := volumeName + string(filepath.Separator)
	resolvedPath := rootPath
	pendingElements := splitPathElements(absolutePath[len(volumeName):])

	for symlinkHops := 0; len(pendingElements) > 0; {
		element := pendingElements[0]
		pendingElements = pendingElements[1:]

		switch element {
		case currentDirectoryConstant:
			continue
		case parentDirectoryConstant:
			resolvedPath = filepath.Dir(resolvedPath)
			continue
		}

		candidatePath := filepath.Join(resolvedPath, element)
		entryInfo, _, lstatError := lstater.LstatIfPossible(candidatePath)
		if errors.Is(lstatError, fs.ErrNotExist) {
			return filepath.Join(append([]string{candidatePath}, pendingElements...)...), nil
		}
		if lstatError != nil {
			return "", lstatError
		}
		if entryInfo.Mode()&os.ModeSymlink == 0 {
			resolvedPath = candidatePath
			continue
		}

		symlinkHops++
		if symlinkHops > maximumSymlinkHopsConstant {
			return "", ErrSymlinkLoop
		}
		linkDestination, readlinkError := linkReader.ReadlinkIfPossible(candidatePath)
		if readlinkError != nil {
			return "", readlinkError
		}
		if filepath.IsAbs(linkDestination) {
			resolvedPath = rootPath
			linkDestination = linkDestination[len(filepath.VolumeName(linkDestination)):]
		}
		pendingElements = append(splitPathElements(linkDestination), pendingElements...)
	}
	return resolvedPath, nil
}

// PathsOverlap reports whether either path equals or contains the other.
func PathsOverlap(firstPath string, secondPath string) bool {
	return pathContains(firstPath, secondPath) || pathContains(secondPath, firstPath)
}

func pathContains(parentPath string, childPath string) bool {
	relativePath, relativeError := filepath.Rel(parentPath, childPath)
	if relativeError != nil {
		return false
	}
	return relativePath != parentDirectoryConstant && !strings.HasPrefix(relativePath, parentDirectoryConstant+string(filepath.Separator))
}

func splitPathElements(hostPath string) []string {
	rawElements := strings.Split(hostPath, string(filepath.Separator))
	elements := make([]string, 0, len(rawElements))
	for _, element := range rawElements {
		if len(element) > 0 {
			elements = append(elements, element)
		}
	}
	return elements
}
