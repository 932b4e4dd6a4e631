// Package jsonstore implements the load/save contract shared by every
// persisted JSON file in a wenget prefix (the manifest cache, the bucket
// list, the installed registry): atomic writes via temp-file-plus-rename,
// and corruption recovery that never crashes the process (§4.8, I6).
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio"

	"github.com/wenget/wenget/internal/log"
)

// Load reads path and unmarshals it into v. If the file does not exist,
// Load leaves v untouched and returns nil (the caller's zero value is the
// empty default). If the file exists but fails to parse, Load renames it
// to "<path>.backup.<unix-timestamp>", logs a warning, and returns nil
// with v left at its caller-supplied zero value — the process never
// crashes on a corrupt state file.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("jsonstore: reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		backupPath := fmt.Sprintf("%s.backup.%d", path, time.Now().Unix())
		if renameErr := os.Rename(path, backupPath); renameErr != nil {
			log.Warn("jsonstore: corrupt file could not be backed up",
				"path", path, "parse_error", err, "rename_error", renameErr)
		} else {
			log.Warn("jsonstore: corrupt file repaired, reset to empty default",
				"path", path, "backup", backupPath, "parse_error", err)
		}
		return nil
	}
	return nil
}

// Save marshals v and atomically replaces path's contents via a
// temp-file-plus-rename, the same pattern distri's installer uses for its
// package-metadata writes.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonstore: marshaling %s: %w", path, err)
	}

	f, err := renameio.TempFile("", path)
	if err != nil {
		return fmt.Errorf("jsonstore: opening temp file for %s: %w", path, err)
	}
	defer f.Cleanup()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("jsonstore: writing %s: %w", path, err)
	}
	if err := f.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("jsonstore: replacing %s: %w", path, err)
	}
	return nil
}
