package layout

import (
	"path"
	"path/filepath"
)

const (
	// CursorDirectoryName is the first segment of the distribution path.
	CursorDirectoryName = ".cursor"
	// RulesDirectoryName is the second segment of the distribution path.
	RulesDirectoryName = "rules"
	// DistributionDirectoryName is the folder holding the distributed prompts.
	DistributionDirectoryName = "global_prompts"
	// IgnoreListFileName is the ignore-list maintained inside each project.
	IgnoreListFileName = ".gitignore"
	// GuidelinesDirectoryName is the shared guidelines folder copied as a whole.
	GuidelinesDirectoryName = "programming_guidelines"
)

// MarkerEntry is the ignore-list line identifying distributed material. It always uses forward slashes.
var MarkerEntry = path.Join(CursorDirectoryName, RulesDirectoryName, DistributionDirectoryName)

// DistributionPath returns the directory that receives (or provides) distributed material under rootPath.
func DistributionPath(rootPath string) string {
	return filepath.Join(rootPath, CursorDirectoryName, RulesDirectoryName, DistributionDirectoryName)
}

// DistributionParentPath returns the directory containing the distribution directory under rootPath.
func DistributionParentPath(rootPath string) string {
	return filepath.Join(rootPath, CursorDirectoryName, RulesDirectoryName)
}

// IgnoreListPath returns the ignore-list file location for a project.
func IgnoreListPath(projectPath string) string {
	return filepath.Join(projectPath, IgnoreListFileName)
}
