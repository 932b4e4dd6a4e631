package install

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// PlaceFiles copies the executables at the given extraction-relative
// paths into installDir, setting 0o755 on UNIX (§4.4 step 5). It returns
// the relative paths recorded for the installed record's Files field.
func PlaceFiles(extractionRoot, installDir string, relPaths []string) ([]string, error) {
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return nil, fmt.Errorf("install: creating install dir: %w", err)
	}

	placed := make([]string, 0, len(relPaths))
	for _, rel := range relPaths {
		src := filepath.Join(extractionRoot, rel)
		name := filepath.Base(rel)
		dst := filepath.Join(installDir, name)

		if err := copyFile(src, dst); err != nil {
			return nil, fmt.Errorf("install: placing %s: %w", rel, err)
		}
		if runtime.GOOS != "windows" {
			if err := os.Chmod(dst, 0o755); err != nil {
				return nil, fmt.Errorf("install: chmod %s: %w", dst, err)
			}
		}
		placed = append(placed, name)
	}
	return placed, nil
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

// PlaceSingleFile handles the "local path to a plain executable" and
// "asset that is itself the executable" universal install paths (§4.4):
// copy the one file directly rather than walking an extraction tree.
func PlaceSingleFile(srcPath, installDir, fileName string) (string, error) {
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return "", fmt.Errorf("install: creating install dir: %w", err)
	}
	dst := filepath.Join(installDir, fileName)
	if err := copyFile(srcPath, dst); err != nil {
		return "", err
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(dst, 0o755); err != nil {
			return "", err
		}
	}
	return fileName, nil
}
