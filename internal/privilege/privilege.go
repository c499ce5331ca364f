package privilege

import "errors"

// ErrElevationRequired indicates that symbolic link creation needs an elevated process token.
var ErrElevationRequired = errors.New("administrator privileges are required to create symbolic links; run the command from an elevated shell")

// ElevationChecker reports whether the current process runs with elevated privileges.
type ElevationChecker func() (bool, error)

// EnsureSymlinkPrivileges returns ErrElevationRequired when the platform requires elevation and the process lacks it.
func EnsureSymlinkPrivileges() error {
	return ensureWithChecker(platformRequiresElevation, currentProcessElevated)
}

func ensureWithChecker(requiresElevation bool, checker ElevationChecker) error {
	if !requiresElevation {
		return nil
	}
	elevated, checkError := checker()
	if checkError != nil {
		return errors.Join(ErrElevationRequired, checkError)
	}
	if !elevated {
		return ErrElevationRequired
	}
	return nil
}
