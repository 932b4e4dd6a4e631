//go:build !windows

// Package selfupdate implements the atomic running-executable replacement
// protocol (§4.7): the running binary is swapped without the in-flight
// process ever seeing a half-written file, since the kernel keeps
// executing the old inode until the process exits.
package selfupdate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// Replace atomically installs newBinaryPath over runningPath. On the same
// filesystem this is a plain rename; across filesystems it copies to a
// sibling temp file first, then renames (§4.7 "UNIX").
func Replace(newBinaryPath, runningPath string) error {
	if sameFilesystem(newBinaryPath, runningPath) {
		if err := os.Chmod(newBinaryPath, 0o755); err != nil {
			return fmt.Errorf("selfupdate: chmod new binary: %w", err)
		}
		if err := os.Rename(newBinaryPath, runningPath); err != nil {
			return fmt.Errorf("selfupdate: rename onto running path: %w", err)
		}
		return nil
	}

	tmp := runningPath + ".new"
	if err := copyFile(newBinaryPath, tmp); err != nil {
		return fmt.Errorf("selfupdate: copying across filesystems: %w", err)
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		return fmt.Errorf("selfupdate: chmod copied binary: %w", err)
	}
	if err := os.Rename(tmp, runningPath); err != nil {
		return fmt.Errorf("selfupdate: rename copied binary: %w", err)
	}
	return nil
}

func sameFilesystem(a, b string) bool {
	var statA, statB syscall.Stat_t
	if err := syscall.Stat(filepath.Dir(a), &statA); err != nil {
		return false
	}
	if err := syscall.Stat(filepath.Dir(b), &statB); err != nil {
		return false
	}
	return statA.Dev == statB.Dev
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// SelfDelete removes the launcher and installed record's bookkeeping is
// the caller's responsibility (it touches the registry); SelfDelete here
// only arranges for the running binary itself to be removed once the
// process exits, via a detached helper, since a process cannot unlink its
// own still-running executable file on some UNIX variants cleanly while
// serving requests from it.
func SelfDelete(runningPath string) error {
	helper := fmt.Sprintf(`#!/bin/sh
while kill -0 %d 2>/dev/null; do sleep 0.2; done
rm -f %q
`, os.Getpid(), runningPath)
	tmp, err := os.CreateTemp("", "wenget-cleanup-*.sh")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(helper); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return err
	}
	return spawnDetached(tmp.Name())
}
