//go:build !windows

package selfupdate

import (
	"os/exec"
	"syscall"
)

// spawnDetached launches script as a fully detached process (new session,
// stdio closed) so it survives this process exiting.
func spawnDetached(script string) error {
	cmd := exec.Command("/bin/sh", script)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd.Start()
}
