//go:build windows

package privilege

import "golang.org/x/sys/windows"

const platformRequiresElevation = true

func currentProcessElevated() (bool, error) {
	return windows.GetCurrentProcessToken().IsElevated(), nil
}
