package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOwnerRepo(t *testing.T) {
	owner, repo, ok := ParseOwnerRepo("https://github.com/astral-sh/uv")
	assert.True(t, ok)
	assert.Equal(t, "astral-sh", owner)
	assert.Equal(t, "uv", repo)
}

func TestParseOwnerRepo_RejectsNonTwoSegmentPaths(t *testing.T) {
	_, _, ok := ParseOwnerRepo("https://github.com/astral-sh")
	assert.False(t, ok)

	_, _, ok = ParseOwnerRepo("https://github.com/astral-sh/uv/releases/download/v1/uv.tar.gz")
	assert.False(t, ok)
}

func TestParseOwnerRepo_StripsGitSuffix(t *testing.T) {
	owner, repo, ok := ParseOwnerRepo("https://github.com/astral-sh/uv.git")
	assert.True(t, ok)
	assert.Equal(t, "astral-sh", owner)
	assert.Equal(t, "uv", repo)
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "1.2.3", NormalizeTag("v1.2.3"))
	assert.Equal(t, "1.2.3", NormalizeTag("1.2.3"))
}
