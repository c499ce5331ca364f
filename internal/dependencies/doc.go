// Package dependencies resolves the default collaborators shared by the copy and link commands.
package dependencies
