package install

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"

	"github.com/wenget/wenget/internal/platform"
	"github.com/wenget/wenget/internal/wgerr"
)

// Extraction safety limits, carried over from the teacher's archive
// extractor: a zip bomb or path-traversal entry must not be able to
// overrun the filesystem or escape the destination directory.
const (
	maxArchiveFiles     = 100_000
	maxArchiveFileSize  = 1 << 30  // 1GB per file
	maxArchiveTotalSize = 10 << 30 // 10GB total extracted size
)

// Extract unpacks archivePath (whose format is ext) into destDir,
// supporting Zip, TarGz, and TarXz (§4.4 step 3's extraction list).
// SevenZ is parsed/scored by the platform matcher but never reaches here:
// no component in this pipeline extracts it.
func Extract(archivePath string, ext platform.Extension, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("install: creating extraction dir: %w", err)
	}

	switch ext {
	case platform.Zip:
		return extractZip(archivePath, destDir)
	case platform.TarGz:
		return extractTar(archivePath, destDir, func(r io.Reader) (io.ReadCloser, error) {
			return pgzip.NewReader(r)
		})
	case platform.TarXz:
		return extractTar(archivePath, destDir, func(r io.Reader) (io.ReadCloser, error) {
			xr, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(xr), nil
		})
	default:
		return wgerr.New(wgerr.ArchiveCorrupt, fmt.Sprintf("install: unsupported archive format %s", ext))
	}
}

func extractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return wgerr.Wrap(wgerr.ArchiveCorrupt, "install: opening zip", err)
	}
	defer zr.Close()

	if len(zr.File) > maxArchiveFiles {
		return wgerr.New(wgerr.ArchiveCorrupt, fmt.Sprintf("install: zip contains too many files (limit: %d)", maxArchiveFiles))
	}

	var totalWritten int64
	for _, f := range zr.File {
		targetPath, err := safeJoin(destDir, f.Name)
		if err != nil {
			return wgerr.Wrap(wgerr.ArchiveCorrupt, "install: invalid path in zip", err)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return fmt.Errorf("install: creating directory %s: %w", f.Name, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return fmt.Errorf("install: creating parent directory for %s: %w", f.Name, err)
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("install: opening zip entry %s: %w", f.Name, err)
		}

		mode := f.Mode()
		if mode == 0 {
			mode = 0o644
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, mode.Perm())
		if err != nil {
			rc.Close()
			return fmt.Errorf("install: creating %s: %w", f.Name, err)
		}

		if totalWritten > maxArchiveTotalSize {
			out.Close()
			rc.Close()
			return wgerr.New(wgerr.ArchiveCorrupt, fmt.Sprintf("install: zip exceeds maximum total extracted size (limit: %d bytes)", maxArchiveTotalSize))
		}
		written, copyErr := io.Copy(out, io.LimitReader(rc, maxArchiveFileSize))
		totalWritten += written
		rc.Close()
		closeErr := out.Close()
		if copyErr != nil {
			return wgerr.Wrap(wgerr.ArchiveCorrupt, fmt.Sprintf("install: writing %s", f.Name), copyErr)
		}
		if closeErr != nil {
			return fmt.Errorf("install: closing %s: %w", f.Name, closeErr)
		}
	}
	return nil
}

func extractTar(archivePath, destDir string, newDecompressor func(io.Reader) (io.ReadCloser, error)) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("install: opening archive: %w", err)
	}
	defer f.Close()

	dr, err := newDecompressor(f)
	if err != nil {
		return wgerr.Wrap(wgerr.ArchiveCorrupt, "install: opening decompressor", err)
	}
	defer dr.Close()

	tr := tar.NewReader(dr)
	fileCount := 0
	var totalWritten int64

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return wgerr.Wrap(wgerr.ArchiveCorrupt, "install: reading tar header", err)
		}

		fileCount++
		if fileCount > maxArchiveFiles {
			return wgerr.New(wgerr.ArchiveCorrupt, fmt.Sprintf("install: archive contains too many files (limit: %d)", maxArchiveFiles))
		}

		targetPath, err := safeJoin(destDir, header.Name)
		if err != nil {
			return wgerr.Wrap(wgerr.ArchiveCorrupt, "install: invalid path in archive", err)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(targetPath, os.FileMode(header.Mode&0o777)); err != nil {
				return fmt.Errorf("install: creating directory %s: %w", header.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
				return fmt.Errorf("install: creating parent directory for %s: %w", header.Name, err)
			}
			out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(header.Mode&0o777))
			if err != nil {
				return fmt.Errorf("install: creating file %s: %w", header.Name, err)
			}
			if totalWritten > maxArchiveTotalSize {
				out.Close()
				return wgerr.New(wgerr.ArchiveCorrupt, fmt.Sprintf("install: archive exceeds maximum total extracted size (limit: %d bytes)", maxArchiveTotalSize))
			}
			written, copyErr := io.Copy(out, io.LimitReader(tr, maxArchiveFileSize))
			totalWritten += written
			closeErr := out.Close()
			if copyErr != nil {
				return wgerr.Wrap(wgerr.ArchiveCorrupt, fmt.Sprintf("install: writing %s", header.Name), copyErr)
			}
			if closeErr != nil {
				return fmt.Errorf("install: closing %s: %w", header.Name, closeErr)
			}
		case tar.TypeSymlink:
			if err := extractSymlink(destDir, targetPath, header); err != nil {
				return err
			}
		default:
			continue
		}
	}
	return nil
}

func extractSymlink(destDir, targetPath string, header *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("install: creating parent directory for symlink %s: %w", header.Name, err)
	}
	if filepath.IsAbs(header.Linkname) {
		return wgerr.New(wgerr.ArchiveCorrupt, fmt.Sprintf("install: absolute symlink target not allowed: %s -> %s", header.Name, header.Linkname))
	}
	resolvedTarget := filepath.Clean(filepath.Join(filepath.Dir(targetPath), header.Linkname))
	rel, err := filepath.Rel(destDir, resolvedTarget)
	if err != nil || strings.HasPrefix(rel, "..") {
		return wgerr.New(wgerr.ArchiveCorrupt, fmt.Sprintf("install: symlink target escapes destination: %s -> %s", header.Name, header.Linkname))
	}
	os.Remove(targetPath)
	if err := os.Symlink(header.Linkname, targetPath); err != nil {
		return fmt.Errorf("install: creating symlink %s: %w", header.Name, err)
	}
	return nil
}

// safeJoin joins destDir and name, rejecting any result that escapes
// destDir (path-traversal entries in a malicious or corrupt archive).
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	rel, err := filepath.Rel(destDir, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q escapes destination", name)
	}
	return target, nil
}
