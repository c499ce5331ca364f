// Package targets loads the distribution targets for both modes.
//
// Copy targets come from a JSON array (YAML with the same shape is accepted)
// of records naming a repository path and the prompt files it receives. The
// document is validated against an embedded JSON schema before it is decoded.
// Link targets come from a plain text file holding one directory per line.
package targets
