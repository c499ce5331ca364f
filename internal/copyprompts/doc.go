// Package copyprompts exposes the copy command, which distributes prompt files and the
// programming guidelines directory into the projects listed in a targets document.
package copyprompts
