package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ExtensionAndOS(t *testing.T) {
	p := Parse("app-x86_64-unknown-linux-musl.tar.gz")
	assert.Equal(t, TarGz, p.Extension)
	assert.Equal(t, Linux, p.OS)
	assert.Equal(t, X86_64, p.Arch)
	assert.Equal(t, Musl, p.Compiler)
}

func TestParse_UnsupportedArch(t *testing.T) {
	p := Parse("app-powerpc64-unknown-linux-gnu.tar.gz")
	assert.Equal(t, UnsupportedNamed, p.Arch)
	assert.Equal(t, "powerpc64", p.UnsupportedKeyword)
}

func TestRejected(t *testing.T) {
	assert.True(t, Rejected("app-linux-x86_64.msi"))
	assert.True(t, Rejected("app-source.tar.gz"))
	assert.True(t, Rejected("app.sha256"))
	assert.False(t, Rejected("app-linux-x86_64.tar.gz"))
}

func TestPlatformKey_RoundTrip(t *testing.T) {
	cases := []struct {
		os OS
		arch Arch
		compiler Compiler
	}{
		{Linux, X86_64, Gnu},
		{Linux, X86_64, Musl},
		{Windows, X86_64, None},
		{MacOS, Aarch64, None},
		{FreeBSD, X86_64, None},
	}
	for _, c := range cases {
		key := PlatformKey(c.os, c.arch, c.compiler)
		gotOS, gotArch, gotCompiler, err := ParsePlatformKey(key)
		require.NoError(t, err)
		assert.Equal(t, c.os, gotOS)
		assert.Equal(t, c.arch, gotArch)
		assert.Equal(t, c.compiler, gotCompiler)
	}
}

// Scenario 1: musl+gnu both offered, host is glibc -> gnu wins, not musl.
func TestFindBestMatch_GlibcHostPrefersGnuOverMusl(t *testing.T) {
	host := Host{OS: Linux, Arch: X86_64, Compiler: Gnu}
	candidates := []ParsedAsset{
		Parse("app-x86_64-unknown-linux-musl.tar.gz"),
		Parse("app-x86_64-unknown-linux-gnu.tar.gz"),
	}
	result, ok := FindBestMatch(host, candidates)
	require.True(t, ok)
	assert.Equal(t, Gnu, result.Asset.Compiler)
	assert.Equal(t, Exact, result.Fallback)
}

// When gnu is absent, musl falls back automatically without confirmation.
func TestFindBestMatch_MuslFallbackWhenGnuAbsent(t *testing.T) {
	host := Host{OS: Linux, Arch: X86_64, Compiler: Gnu}
	candidates := []ParsedAsset{
		Parse("app-x86_64-unknown-linux-musl.tar.gz"),
	}
	result, ok := FindBestMatch(host, candidates)
	require.True(t, ok)
	assert.Equal(t, Musl, result.Asset.Compiler)
	assert.Equal(t, CompatibleAuto, result.Fallback)
}

// Scenario 2: ambiguous macOS asset with no arch token defaults to
// Aarch64 and is treated as CompatibleAuto on an aarch64 host.
func TestFindBestMatch_AmbiguousMacOSDefaultsToAarch64(t *testing.T) {
	host := Host{OS: MacOS, Arch: Aarch64}
	candidates := []ParsedAsset{Parse("gitui-mac.tar.gz")}
	result, ok := FindBestMatch(host, candidates)
	require.True(t, ok)
	assert.Equal(t, Aarch64, func() Arch {
		a, _ := DefaultArch(MacOS)
		return a
	}())
	assert.Equal(t, CompatibleAuto, result.Fallback)
}

// Scenario 4: unsupported named arch excluded even though OS matches.
func TestFindBestMatch_UnsupportedArchExcluded(t *testing.T) {
	host := Host{OS: Linux, Arch: X86_64, Compiler: Gnu}
	candidates := []ParsedAsset{Parse("app-powerpc64-unknown-linux-gnu.tar.gz")}
	_, ok := FindBestMatch(host, candidates)
	assert.False(t, ok)
}

func TestFindBestMatch_OSMismatchIsHardReject(t *testing.T) {
	host := Host{OS: FreeBSD, Arch: X86_64}
	candidates := []ParsedAsset{Parse("app-x86_64-unknown-linux-gnu.tar.gz")}
	_, ok := FindBestMatch(host, candidates)
	assert.False(t, ok)
}

func TestFindBestMatch_EmulationRequiresConfirm(t *testing.T) {
	host := Host{OS: MacOS, Arch: Aarch64}
	candidates := []ParsedAsset{Parse("app-x86_64-apple-darwin.tar.gz")}
	result, ok := FindBestMatch(host, candidates)
	require.True(t, ok)
	assert.Equal(t, CompatibleConfirm, result.Fallback)
}

func TestVariant_EmptyWhenNoResidue(t *testing.T) {
	chosen := Parse("x86_64-unknown-linux-gnu.tar.gz")
	assert.Equal(t, "", Variant(chosen, nil))
}

func TestVariant_NonEmptyForDesktopBuild(t *testing.T) {
	chosen := Parse("app-desktop-x86_64-unknown-linux-gnu.tar.gz")
	baseline := Parse("app-x86_64-unknown-linux-gnu.tar.gz")
	v := Variant(chosen, []ParsedAsset{baseline, chosen})
	assert.Equal(t, "desktop", v)
}
