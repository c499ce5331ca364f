// Package ignorelist maintains the distribution marker inside a project's
// ignore-list file.
//
// Manager checks for the marker with a plain substring search and appends it
// when absent, creating the file if necessary, so repeated runs never
// duplicate the entry.
package ignorelist
