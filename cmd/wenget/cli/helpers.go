package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/wenget/wenget/internal/config"
	"github.com/wenget/wenget/internal/platform"
)

// resolveHost builds the platform.Host to match release assets against:
// the --platform override if given, else the running OS/arch with a
// best-effort host-compiler guess on Linux.
func resolveHost() (platform.Host, error) {
	if platformKey != "" {
		osKind, arch, compiler, err := platform.ParsePlatformKey(platformKey)
		if err != nil {
			return platform.Host{}, newUsageError(fmt.Sprintf("invalid --platform %q: %v", platformKey, err))
		}
		return platform.Host{OS: osKind, Arch: arch, Compiler: compiler}, nil
	}
	return detectHost(), nil
}

// detectHost guesses the running host's platform.Host from runtime.GOOS /
// runtime.GOARCH, and on Linux from whether the process itself appears to
// be a musl or glibc build (best-effort; §9 leaves PreferMusl as an
// explicit override for the ambiguous cases this can't resolve).
func detectHost() platform.Host {
	var osKind platform.OS
	switch runtime.GOOS {
	case "windows":
		osKind = platform.Windows
	case "darwin":
		osKind = platform.MacOS
	case "linux":
		osKind = platform.Linux
	case "freebsd":
		osKind = platform.FreeBSD
	default:
		osKind = platform.OSUnknown
	}

	var archKind platform.Arch
	switch runtime.GOARCH {
	case "amd64":
		archKind = platform.X86_64
	case "386":
		archKind = platform.I686
	case "arm64":
		archKind = platform.Aarch64
	case "arm":
		archKind = platform.Armv7
	default:
		archKind = platform.ArchUnknown
	}

	compiler := platform.None
	if osKind == platform.Linux {
		compiler = detectLinuxCompiler()
	}

	return platform.Host{OS: osKind, Arch: archKind, Compiler: compiler}
}

// detectLinuxCompiler reports Musl if an x86_64 or aarch64
// /lib/ld-musl-*.so.1 loader is present, defaulting to Gnu otherwise (almost
// every mainstream distro); glibc's own loader is not probed. A config.LoadGlobal PreferMusl override wins
// regardless of what's detected.
func detectLinuxCompiler() platform.Compiler {
	cfg, _ := config.LoadGlobal()
	if cfg.PreferMusl {
		return platform.Musl
	}
	for _, candidate := range []string{"/lib/ld-musl-x86_64.so.1", "/lib/ld-musl-aarch64.so.1"} {
		if _, err := os.Stat(candidate); err == nil {
			return platform.Musl
		}
	}
	return platform.Gnu
}
