package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Scope selects between the per-user and the elevated system-wide prefix
// (§6 "Directory layout").
type Scope int

const (
	UserScope Scope = iota
	SystemScope
)

// Prefix is the resolved directory layout for one scope.
type Prefix struct {
	Root       string
	AppsDir    string
	BinDir     string
	CacheDir   string
	DownloadsDir string
	LogsDir    string
	BucketsFile string
	InstalledFile string
}

// NewPrefix lays out the directory tree under root (§6).
func NewPrefix(root string) Prefix {
	return Prefix{
		Root:          root,
		AppsDir:       filepath.Join(root, "apps"),
		BinDir:        filepath.Join(root, "bin"),
		CacheDir:      filepath.Join(root, "cache"),
		DownloadsDir:  filepath.Join(root, "cache", "downloads"),
		LogsDir:       filepath.Join(root, "logs"),
		BucketsFile:   filepath.Join(root, "buckets.json"),
		InstalledFile: filepath.Join(root, "installed.json"),
	}
}

// ResolvePrefix returns the Prefix for the requested scope.
func ResolvePrefix(scope Scope) (Prefix, error) {
	switch scope {
	case UserScope:
		return NewPrefix(UserPrefixDir()), nil
	case SystemScope:
		root, err := systemPrefixRoot()
		if err != nil {
			return Prefix{}, err
		}
		return NewPrefix(root), nil
	default:
		return Prefix{}, fmt.Errorf("config: unknown scope %d", scope)
	}
}

func systemPrefixRoot() (string, error) {
	switch runtime.GOOS {
	case "windows":
		root := os.Getenv("ProgramW6432")
		if root == "" {
			root = os.Getenv("ProgramFiles")
		}
		if root == "" {
			return "", fmt.Errorf("config: could not determine system Program Files directory")
		}
		return filepath.Join(root, "wenget"), nil
	default:
		return "/opt/wenget", nil
	}
}

// SystemBinLinkDir is where system-scope launchers are additionally
// symlinked on UNIX, per §6 ("launchers symlinked into /usr/local/bin/").
// Windows has no equivalent: its bin dir is added to the machine Path
// directly.
func SystemBinLinkDir() string {
	return "/usr/local/bin"
}

// EnsureLayout creates every directory the prefix needs, tolerating ones
// that already exist.
func (p Prefix) EnsureLayout() error {
	for _, dir := range []string{p.Root, p.AppsDir, p.BinDir, p.CacheDir, p.DownloadsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", dir, err)
		}
	}
	return nil
}

// IsElevated reports whether the current process has the privilege
// required for SystemScope operations.
func IsElevated() bool {
	return isElevated()
}
