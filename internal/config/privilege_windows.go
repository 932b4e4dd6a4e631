//go:build windows

package config

import "golang.org/x/sys/windows"

// isElevated reports whether the current process token has the
// elevated-administrator bit set.
func isElevated() bool {
	token := windows.GetCurrentProcessToken()
	return token.IsElevated()
}
