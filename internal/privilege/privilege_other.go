//go:build !windows

package privilege

import "os"

const platformRequiresElevation = false

func currentProcessElevated() (bool, error) {
	return os.Geteuid() == 0, nil
}
