package pathutils

import (
	"path/filepath"
	"strings"
)

// TargetPathSanitizer normalizes user-supplied target directory paths.
type TargetPathSanitizer struct {
	homeExpander *HomeExpander
}

// NewTargetPathSanitizer constructs a sanitizer. A nil expander falls back to the operating system home directory.
func NewTargetPathSanitizer(homeExpander *HomeExpander) *TargetPathSanitizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &TargetPathSanitizer{homeExpander: homeExpander}
}

// SanitizePath trims whitespace, expands the home directory and cleans the result. Blank input yields an empty string.
func (sanitizer *TargetPathSanitizer) SanitizePath(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return ""
	}
	return filepath.Clean(sanitizer.homeExpander.Expand(trimmedPath))
}

// Sanitize applies SanitizePath to every candidate, preserving order and dropping blank entries.
func (sanitizer *TargetPathSanitizer) Sanitize(candidatePaths []string) []string {
	sanitizedPaths := make([]string, 0, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		sanitizedPath := sanitizer.SanitizePath(candidatePath)
		if len(sanitizedPath) == 0 {
			continue
		}
		sanitizedPaths = append(sanitizedPaths, sanitizedPath)
	}
	if len(sanitizedPaths) == 0 {
		return nil
	}
	return sanitizedPaths
}
