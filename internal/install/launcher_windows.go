//go:build windows

package install

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LauncherPath returns the launcher file path for commandName in binDir
// on Windows: a "<command_name>.cmd" batch file (§4.4 step 6).
func LauncherPath(binDir, commandName string) string {
	return filepath.Join(binDir, commandName+".cmd")
}

// batchSpecialChars are the characters that disrupt the batch interpreter
// if left unescaped inside a quoted path (§4.4 step 6). "^" must be
// escaped first, or later substitutions would re-escape the "^" those
// substitutions just inserted.
var batchSpecialChars = []string{"^", "&", "|", "<", ">", "%", "!"}

func escapeBatchPath(path string) string {
	for _, c := range batchSpecialChars {
		path = strings.ReplaceAll(path, c, "^"+c)
	}
	return path
}

// CreateLauncher writes a batch launcher at bin_dir/command_name.cmd
// invoking the placed executable with all arguments forwarded.
func CreateLauncher(binDir, commandName, executablePath, installDir string) error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("install: creating bin dir: %w", err)
	}

	absExe, err := filepath.Abs(executablePath)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("@echo off\r\n\"%s\" %%*\r\n", escapeBatchPath(absExe))
	link := LauncherPath(binDir, commandName)
	if err := os.WriteFile(link, []byte(content), 0o644); err != nil {
		return fmt.Errorf("install: writing launcher: %w", err)
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
