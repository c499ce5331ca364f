// Package layout names the on-disk locations shared by every distribution mode:
// the marker entry written to ignore-lists, the three-segment directory that
// receives distributed material inside a project, and the canonical source
// directory resolved next to the promptsync executable.
package layout
