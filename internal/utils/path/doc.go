// Package pathutils normalizes filesystem paths supplied by users, expanding
// the home directory shortcut and trimming incidental whitespace.
package pathutils
