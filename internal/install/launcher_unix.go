//go:build !windows

package install

import (
	"fmt"
	"os"
	"path/filepath"
)

// LauncherPath returns the launcher file path for commandName in binDir
// on this OS (§4.4 step 6).
func LauncherPath(binDir, commandName string) string {
	return filepath.Join(binDir, commandName)
}

// CreateLauncher creates a symbolic link at bin_dir/command_name pointing
// at the placed executable's absolute path. If a link already exists, it
// is overwritten only when it points into installDir; otherwise the
// caller is expected to have already applied the command-name conflict
// rule (§4.4 step 6) before calling CreateLauncher.
func CreateLauncher(binDir, commandName, executablePath, installDir string) error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("install: creating bin dir: %w", err)
	}
	link := LauncherPath(binDir, commandName)

	if existing, err := os.Readlink(link); err == nil {
		rel, relErr := filepath.Rel(installDir, existing)
		if relErr != nil || rel == ".." || len(rel) >= 2 && rel[:2] == ".." {
			return fmt.Errorf("install: launcher %s exists and does not point into %s", link, installDir)
		}
		if err := os.Remove(link); err != nil {
			return fmt.Errorf("install: removing existing launcher: %w", err)
		}
	}

	absExe, err := filepath.Abs(executablePath)
	if err != nil {
		return err
	}
	if err := os.Symlink(absExe, link); err != nil {
		return fmt.Errorf("install: creating launcher symlink: %w", err)
	}
	return nil
}

// RemoveLauncher removes the launcher for commandName, tolerating it
// being already absent.
func RemoveLauncher(binDir, commandName string) error {
	err := os.Remove(LauncherPath(binDir, commandName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
