// Package privilege verifies that the current process may create symbolic links.
package privilege
