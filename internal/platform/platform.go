// Package platform parses release asset filenames into structured
// descriptors and scores them against the host, the way a release asset
// picker has to when the publisher gives you nothing but a filename.
package platform

import (
	"fmt"
	"strings"
)

// Extension is the archive/binary format carried by an asset.
type Extension int

const (
	Unknown Extension = iota
	Zip
	TarGz
	TarXz
	TarBz2
	SevenZ
	Exe
	Msi // rejected
	UncompressedBinary
)

func (e Extension) String() string {
	switch e {
	case Zip:
		return "zip"
	case TarGz:
		return "tar.gz"
	case TarXz:
		return "tar.xz"
	case TarBz2:
		return "tar.bz2"
	case SevenZ:
		return "7z"
	case Exe:
		return "exe"
	case Msi:
		return "msi"
	case UncompressedBinary:
		return "bin"
	default:
		return "unknown"
	}
}

// OS is the target operating system.
type OS int

const (
	OSUnknown OS = iota
	Windows
	Linux
	MacOS
	FreeBSD
)

func (o OS) String() string {
	switch o {
	case Windows:
		return "windows"
	case Linux:
		return "linux"
	case MacOS:
		return "macos"
	case FreeBSD:
		return "freebsd"
	default:
		return "unknown"
	}
}

// Arch is the target CPU architecture. UnsupportedNamed carries the
// blocklisted keyword so an asset can be visibly rejected instead of
// silently misclassified as Unknown.
type Arch int

const (
	ArchUnknown Arch = iota
	X86_64
	I686
	Aarch64
	Armv7
	UnsupportedNamed
)

func (a Arch) String() string {
	switch a {
	case X86_64:
		return "x86_64"
	case I686:
		return "i686"
	case Aarch64:
		return "aarch64"
	case Armv7:
		return "armv7"
	case UnsupportedNamed:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Compiler is the libc/ABI the asset was built against.
type Compiler int

const (
	None Compiler = iota
	Gnu
	Musl
	Msvc
)

func (c Compiler) String() string {
	switch c {
	case Gnu:
		return "gnu"
	case Musl:
		return "musl"
	case Msvc:
		return "msvc"
	default:
		return ""
	}
}

// ParsedAsset is the structured descriptor extracted from a release asset
// filename.
type ParsedAsset struct {
	RawName     string
	Extension   Extension
	OS          OS
	Arch        Arch
	Compiler    Compiler
	UnsupportedKeyword string // set iff Arch == UnsupportedNamed
}

// rejectedNameMarkers exclude checksum/signature/source tarballs that are
// sometimes published alongside real release assets.
var rejectedNameMarkers = []string{"source", "src", "sources", ".sha256", ".asc", ".sig"}

var rejectedExtensions = map[string]bool{
	".deb": true, ".rpm": true, ".apk": true, ".dmg": true, ".pkg": true,
}

// unsupportedArchKeywords is the explicit blocklist: any token prefix match
// here marks the asset as carrying an architecture wenget will never run.
var unsupportedArchKeywords = []string{
	"ppc", "powerpc", "riscv", "mips", "s390", "alpha", "sh4", "hppa", "ia64", "loong",
}

// Rejected reports whether name should be excluded from candidacy before
// any scoring is attempted (extension blocklist, source/checksum markers,
// or an .msi installer).
func Rejected(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range rejectedNameMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	for ext := range rejectedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	if strings.HasSuffix(lower, ".msi") {
		return true
	}
	return false
}

func tokenize(name string) []string {
	lower := strings.ToLower(name)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
}

// Parse extracts a ParsedAsset from a raw release asset filename. It never
// returns an error: an asset that can't be confidently classified comes
// back with Unknown fields, and Rejected callers should check Rejected
// first since Parse does not itself refuse rejected names.
func Parse(name string) ParsedAsset {
	p := ParsedAsset{RawName: name}
	tokens := tokenize(name)

	p.Extension = parseExtension(name, tokens)
	p.OS = parseOS(tokens)

	if kw := matchUnsupportedArch(tokens); kw != "" {
		p.Arch = UnsupportedNamed
		p.UnsupportedKeyword = kw
	} else {
		p.Arch = parseArch(tokens, p.OS)
	}

	p.Compiler = parseCompiler(tokens)
	return p
}

func parseExtension(name string, tokens []string) Extension {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz"):
		return TarGz
	case strings.HasSuffix(lower, ".tar.xz") || strings.HasSuffix(lower, ".txz"):
		return TarXz
	case strings.HasSuffix(lower, ".tar.bz2") || strings.HasSuffix(lower, ".tbz2"):
		return TarBz2
	case strings.HasSuffix(lower, ".zip"):
		return Zip
	case strings.HasSuffix(lower, ".7z"):
		return SevenZ
	case strings.HasSuffix(lower, ".msi"):
		return Msi
	case strings.HasSuffix(lower, ".exe"):
		return Exe
	case !strings.Contains(lower, "."):
		return UncompressedBinary
	default:
		return Unknown
	}
}

func parseOS(tokens []string) OS {
	for _, t := range tokens {
		switch t {
		case "windows", "win", "msvc":
			return Windows
		case "darwin", "macos", "mac", "osx", "apple":
			return MacOS
		case "linux":
			return Linux
		case "freebsd":
			return FreeBSD
		}
	}
	// two-token compounds like "pc-windows" and "unknown-linux" tokenize
	// to the same single tokens above once split on '-', so nothing
	// further is needed here.
	return OSUnknown
}

func matchUnsupportedArch(tokens []string) string {
	for _, t := range tokens {
		for _, kw := range unsupportedArchKeywords {
			if strings.HasPrefix(t, kw) {
				return t
			}
		}
	}
	return ""
}

func parseArch(tokens []string, os OS) Arch {
	for _, t := range tokens {
		switch t {
		case "x86_64", "amd64", "x64":
			return X86_64
		case "aarch64", "arm64":
			return Aarch64
		case "armv7", "armv6", "armhf":
			return Armv7
		case "i686", "i386", "386":
			return I686
		case "x86":
			// Context-aware: on macOS "x86" conventionally means 64-bit.
			if os == MacOS {
				return X86_64
			}
			return I686
		}
	}
	return ArchUnknown
}

func parseCompiler(tokens []string) Compiler {
	for _, t := range tokens {
		switch t {
		case "musl":
			return Musl
		case "gnu", "gnueabihf":
			return Gnu
		case "msvc":
			return Msvc
		}
	}
	return None
}

// DefaultArch returns the architecture assumed for an OS when the filename
// carries no explicit arch token. FreeBSD has no default: the filename
// must be explicit.
func DefaultArch(os OS) (Arch, bool) {
	switch os {
	case Windows, Linux:
		return X86_64, true
	case MacOS:
		return Aarch64, true
	default:
		return ArchUnknown, false
	}
}

// Host describes the platform wenget is running on.
type Host struct {
	OS       OS
	Arch     Arch
	Compiler Compiler // the host's own libc, Gnu or Musl on Linux, None elsewhere
}

// FallbackType classifies how closely a selected asset matches the host.
type FallbackType int

const (
	// Exact: arch and (if applicable) compiler matched explicitly.
	Exact FallbackType = iota
	// CompatibleAuto: e.g. a musl binary running fine on a glibc host,
	// or an explicit-arch match whose compiler degraded without needing
	// user confirmation.
	CompatibleAuto
	// CompatibleConfirm: e.g. x86_64 under Rosetta/WOA emulation, or a
	// 64-bit host installing a 32-bit binary. Requires affirmative
	// confirmation unless auto-yes is set.
	CompatibleConfirm
	// NoFallback sentinel used only alongside a nil candidate.
	NoFallback
)

func (f FallbackType) String() string {
	switch f {
	case Exact:
		return "exact"
	case CompatibleAuto:
		return "compatible_auto"
	case CompatibleConfirm:
		return "compatible_confirm"
	default:
		return "none"
	}
}

// scored pairs a candidate with its computed score and fallback kind.
type scored struct {
	asset    ParsedAsset
	score    int
	fallback FallbackType
	usedDefaultArch bool
}

// score computes the match score of asset against host, or ok=false if the
// asset is a hard reject (OS mismatch or unsupported architecture).
func score(host Host, asset ParsedAsset) (s scored, ok bool) {
	if asset.OS != host.OS {
		return scored{}, false
	}
	if asset.Arch == UnsupportedNamed {
		return scored{}, false
	}

	total := 100 // OS match base

	effectiveArch := asset.Arch
	usedDefault := false
	if effectiveArch == ArchUnknown {
		if def, ok := DefaultArch(asset.OS); ok {
			effectiveArch = def
			usedDefault = true
		}
	}

	archExplicit := effectiveArch == host.Arch && !usedDefault
	archDefault := effectiveArch == host.Arch && usedDefault
	emulated := isEmulationCompatible(host, effectiveArch)
	thirtyTwoOnSixtyFour := is32On64(host, effectiveArch)

	switch {
	case archExplicit:
		total += 50
	case archDefault:
		total += 25
	case emulated || thirtyTwoOnSixtyFour:
		// no arch credit; these are CompatibleConfirm paths entirely
		// carried by the fallback classification below.
	case effectiveArch == host.Arch:
		total += 25
	default:
		return scored{}, false
	}

	total += compilerScore(host, asset.Compiler)
	total += formatScore(asset.Extension)

	fallback := classifyFallback(host, asset, effectiveArch, usedDefault, archExplicit, emulated, thirtyTwoOnSixtyFour)

	return scored{asset: asset, score: total, fallback: fallback, usedDefaultArch: usedDefault}, true
}

func compilerScore(host Host, c Compiler) int {
	switch host.OS {
	case Linux:
		// Prefer an explicit match to the host's own libc; fall back to
		// musl when the host's compiler isn't offered. This pins the
		// spec's flagged open question: raw Musl+30>Gnu+20 would always
		// prefer musl even on a glibc host, which is not the intent.
		switch {
		case c == host.Compiler && host.Compiler != None:
			return 30
		case c == Musl:
			return 20
		case c == Gnu:
			return 15
		case c == None:
			return 10
		default:
			return 0
		}
	case Windows:
		switch c {
		case Msvc:
			return 30
		case Gnu:
			return 20
		default:
			return 0
		}
	case MacOS:
		if c == None {
			return 30
		}
		return 0
	default:
		return 0
	}
}

func formatScore(e Extension) int {
	switch e {
	case TarGz, TarXz, Zip:
		return 5
	case Exe:
		return 3
	case UncompressedBinary:
		return 2
	default:
		return 0
	}
}

func isEmulationCompatible(host Host, assetArch Arch) bool {
	// x86_64 asset running under Rosetta on Apple Silicon, or under
	// Windows-on-ARM emulation.
	if assetArch == X86_64 && host.Arch == Aarch64 && (host.OS == MacOS || host.OS == Windows) {
		return true
	}
	// glibc binary on a musl host still runs via compat shims in practice
	// but is explicitly a confirm-gated fallback, not a hard reject.
	return false
}

func is32On64(host Host, assetArch Arch) bool {
	return assetArch == I686 && host.Arch == X86_64
}

func classifyFallback(host Host, asset ParsedAsset, effectiveArch Arch, usedDefaultArch, archExplicit, emulated, is32on64 bool) FallbackType {
	if emulated || is32on64 {
		return CompatibleConfirm
	}
	if host.OS == Linux && host.Compiler != None {
		if asset.Compiler == host.Compiler {
			return Exact
		}
		if asset.Compiler == Musl {
			return CompatibleAuto
		}
		if asset.Compiler == None {
			return CompatibleAuto
		}
		// host is musl, asset is gnu: runs only via compat layer.
		return CompatibleConfirm
	}
	if archExplicit {
		return Exact
	}
	return CompatibleAuto
}

// MatchResult is the outcome of FindBestMatch.
type MatchResult struct {
	Asset    ParsedAsset
	Fallback FallbackType
	Score    int
}

// FindBestMatch scores every candidate against host and returns the
// highest-scoring one along with its FallbackType. If no candidate scores
// positively, ok is false and the caller should raise wgerr.NoMatch.
func FindBestMatch(host Host, candidates []ParsedAsset) (MatchResult, bool) {
	var best scored
	found := false
	for _, c := range candidates {
		s, ok := score(host, c)
		if !ok {
			continue
		}
		if !found || s.score > best.score {
			best = s
			found = true
		}
	}
	if !found {
		return MatchResult{}, false
	}
	return MatchResult{Asset: best.asset, Fallback: best.fallback, Score: best.score}, true
}

// PlatformKey renders the normalized "<os>-<arch>[-<compiler>]" key used in
// bucket manifests (§6). Absence of compiler means "any".
func PlatformKey(os OS, arch Arch, compiler Compiler) string {
	if compiler == None {
		return fmt.Sprintf("%s-%s", os, arch)
	}
	return fmt.Sprintf("%s-%s-%s", os, arch, compiler)
}

// ParsePlatformKey is the inverse of PlatformKey, used when round-tripping
// manifest keys (the identity property in the testable-properties section).
func ParsePlatformKey(key string) (os OS, arch Arch, compiler Compiler, err error) {
	parts := strings.Split(key, "-")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("platform: malformed key %q", key)
	}
	os = parseOSName(parts[0])
	if os == OSUnknown {
		return 0, 0, 0, fmt.Errorf("platform: unknown os in key %q", key)
	}
	arch = parseArchName(parts[1])
	if arch == ArchUnknown {
		return 0, 0, 0, fmt.Errorf("platform: unknown arch in key %q", key)
	}
	compiler = None
	if len(parts) == 3 {
		compiler = parseCompilerName(parts[2])
		if compiler == None {
			return 0, 0, 0, fmt.Errorf("platform: unknown compiler in key %q", key)
		}
	}
	return os, arch, compiler, nil
}

func parseOSName(s string) OS {
	switch s {
	case "windows":
		return Windows
	case "linux":
		return Linux
	case "macos":
		return MacOS
	case "freebsd":
		return FreeBSD
	default:
		return OSUnknown
	}
}

func parseArchName(s string) Arch {
	switch s {
	case "x86_64":
		return X86_64
	case "i686":
		return I686
	case "aarch64":
		return Aarch64
	case "armv7":
		return Armv7
	default:
		return ArchUnknown
	}
}

func parseCompilerName(s string) Compiler {
	switch s {
	case "gnu":
		return Gnu
	case "musl":
		return Musl
	case "msvc":
		return Msvc
	default:
		return None
	}
}

// Variant computes the variant identifier for chosen relative to a sibling
// set sharing the same (os, arch): the concatenation of non-platform
// tokens that differ from the default-scoring sibling. Empty ⇒ no variant.
func Variant(chosen ParsedAsset, siblings []ParsedAsset) string {
	chosenTokens := residueTokens(chosen)
	if len(siblings) == 0 {
		return strings.Join(chosenTokens, "-")
	}
	// The default-scoring sibling is whichever has the fewest residue
	// tokens (closest to a bare platform name); ties keep filename order.
	var base []string
	for i, sib := range siblings {
		t := residueTokens(sib)
		if i == 0 || len(t) < len(base) {
			base = t
		}
	}
	baseSet := make(map[string]bool, len(base))
	for _, t := range base {
		baseSet[t] = true
	}
	var diff []string
	for _, t := range chosenTokens {
		if !baseSet[t] {
			diff = append(diff, t)
		}
	}
	return strings.Join(diff, "-")
}

// residueTokens returns the filename's tokens with every recognized
// platform/extension/compiler token stripped, leaving only the
// variant-bearing residue (e.g. "baseline", "desktop").
func residueTokens(p ParsedAsset) []string {
	recognized := map[string]bool{
		"windows": true, "win": true, "msvc": true,
		"darwin": true, "macos": true, "mac": true, "osx": true, "apple": true,
		"linux": true, "unknown": true, "freebsd": true, "pc": true,
		"x86_64": true, "amd64": true, "x64": true, "aarch64": true, "arm64": true,
		"armv7": true, "armv6": true, "armhf": true, "i686": true, "i386": true, "386": true, "x86": true,
		"musl": true, "gnu": true, "gnueabihf": true,
	}
	var out []string
	for _, t := range tokenize(p.RawName) {
		if recognized[t] {
			continue
		}
		if isExtensionToken(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isExtensionToken(t string) bool {
	switch t {
	case "tar", "gz", "tgz", "xz", "txz", "bz2", "tbz2", "zip", "7z", "exe", "msi":
		return true
	default:
		return false
	}
}
