//go:build windows

package install

import (
	"fmt"
	"os"
	"path/filepath"
)

// createInterpretedLauncher writes a batch wrapper that invokes plan's
// interpreter against scriptPath, covering script types whose interpreter
// isn't the script itself on Windows (PowerShell, Python).
func createInterpretedLauncher(binDir, commandName string, plan ScriptLauncherPlan, scriptPath string) error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("install: creating bin dir: %w", err)
	}
	absScript, err := filepath.Abs(scriptPath)
	if err != nil {
		return err
	}
	args := ""
	for _, a := range plan.Args {
		args += a + " "
	}
	content := fmt.Sprintf("@echo off\r\n%s %s\"%s\" %%*\r\n", plan.Interpreter, args, escapeBatchPath(absScript))
	return os.WriteFile(LauncherPath(binDir, commandName), []byte(content), 0o644)
}
