//go:build !windows

package install

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// shellRCFiles is the set of rc files PATH integration appends to on
// UNIX (§4.4 "PATH integration"), in the order they're checked.
func shellRCFiles(home string) []string {
	return []string{
		filepath.Join(home, ".bashrc"),
		filepath.Join(home, ".zshrc"),
		filepath.Join(home, ".profile"),
		filepath.Join(home, ".config", "fish", "config.fish"),
	}
}

// IntegratePATH appends an export line for binDir to every shell rc file
// that exists under home, skipping files where the line is already
// present. Fish gets its own syntax since it doesn't use POSIX `export`.
func IntegratePATH(home, binDir string) error {
	for _, rc := range shellRCFiles(home) {
		if _, err := os.Stat(rc); err != nil {
			continue // only touch rc files that already exist
		}
		line := exportLine(rc, binDir)
		existing, err := os.ReadFile(rc)
		if err != nil {
			return fmt.Errorf("install: reading %s: %w", rc, err)
		}
		if strings.Contains(string(existing), binDir) {
			continue
		}
		f, err := os.OpenFile(rc, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("install: opening %s: %w", rc, err)
		}
		_, writeErr := f.WriteString("\n" + line + "\n")
		closeErr := f.Close()
		if writeErr != nil {
			return fmt.Errorf("install: writing %s: %w", rc, writeErr)
		}
		if closeErr != nil {
			return closeErr
		}
	}
	return nil
}

func exportLine(rcPath, binDir string) string {
	if strings.HasSuffix(rcPath, "fish") {
		return fmt.Sprintf("fish_add_path %s", binDir)
	}
	return fmt.Sprintf(`export PATH="%s:$PATH"`, binDir)
}
