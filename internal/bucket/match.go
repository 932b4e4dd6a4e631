package bucket

import (
	"github.com/wenget/wenget/internal/platform"
)

// SelectBinaries picks the binary records matching host out of a package
// entry's pre-declared platform map (§6 "Platform key grammar"). Unlike
// internal/platform's FindBestMatch — which parses free-form release
// asset filenames — bucket manifests already key binaries by an explicit
// platform string, so matching here is a lookup with a compiler
// fallback rather than a filename-scoring pass.
func SelectBinaries(host platform.Host, platforms map[string][]BinaryRecord) ([]BinaryRecord, platform.FallbackType, bool) {
	if recs, ok := platforms[platform.PlatformKey(host.OS, host.Arch, host.Compiler)]; ok && host.Compiler != platform.None {
		return recs, platform.Exact, true
	}
	if recs, ok := platforms[platform.PlatformKey(host.OS, host.Arch, platform.None)]; ok {
		return recs, platform.Exact, true
	}

	// No key matches the host's own compiler or "any"; fall back across
	// the other compiler-tagged keys for the same os-arch, preferring
	// musl (the universal fallback) over gnu (§9's pinned preference).
	for _, fallbackCompiler := range []platform.Compiler{platform.Musl, platform.Gnu, platform.Msvc} {
		if fallbackCompiler == host.Compiler {
			continue
		}
		if recs, ok := platforms[platform.PlatformKey(host.OS, host.Arch, fallbackCompiler)]; ok {
			return recs, platform.CompatibleAuto, true
		}
	}
	return nil, platform.NoFallback, false
}
