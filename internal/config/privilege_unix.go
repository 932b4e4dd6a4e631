//go:build !windows

package config

import "os"

// isElevated reports root on UNIX.
func isElevated() bool {
	return os.Geteuid() == 0
}
