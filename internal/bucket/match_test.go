package bucket

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wenget/wenget/internal/platform"
)

func TestSelectBinaries_ExactCompilerMatch(t *testing.T) {
	host := platform.Host{OS: platform.Linux, Arch: platform.X86_64, Compiler: platform.Gnu}
	platforms := map[string][]BinaryRecord{
		"linux-x86_64-gnu":  {{URL: "gnu"}},
		"linux-x86_64-musl": {{URL: "musl"}},
	}
	recs, fb, ok := SelectBinaries(host, platforms)
	assert.True(t, ok)
	assert.Equal(t, platform.Exact, fb)
	assert.Equal(t, "gnu", recs[0].URL)
}

func TestSelectBinaries_FallsBackToMusl(t *testing.T) {
	host := platform.Host{OS: platform.Linux, Arch: platform.X86_64, Compiler: platform.Gnu}
	platforms := map[string][]BinaryRecord{
		"linux-x86_64-musl": {{URL: "musl"}},
	}
	recs, fb, ok := SelectBinaries(host, platforms)
	assert.True(t, ok)
	assert.Equal(t, platform.CompatibleAuto, fb)
	assert.Equal(t, "musl", recs[0].URL)
}

func TestSelectBinaries_NoMatchingOS(t *testing.T) {
	host := platform.Host{OS: platform.Windows, Arch: platform.X86_64, Compiler: platform.None}
	platforms := map[string][]BinaryRecord{
		"linux-x86_64-gnu": {{URL: "gnu"}},
	}
	_, _, ok := SelectBinaries(host, platforms)
	assert.False(t, ok)
}
