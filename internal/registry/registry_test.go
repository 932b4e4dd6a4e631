package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_WithAndWithoutVariant(t *testing.T) {
	assert.Equal(t, "uv", Key("uv", ""))
	assert.Equal(t, "uv::uvx", Key("uv", "uvx"))

	repo, variant := SplitKey("uv::uvx")
	assert.Equal(t, "uv", repo)
	assert.Equal(t, "uvx", variant)

	repo, variant = SplitKey("uv")
	assert.Equal(t, "uv", repo)
	assert.Equal(t, "", variant)
}

func TestRegistry_SaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installed.json")
	reg, err := Load(path)
	require.NoError(t, err)

	reg.Put(Record{RepoName: "uv", CommandName: "uv", InstallPath: "/apps/uv"})
	require.NoError(t, reg.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	rec, ok := reloaded.Get("uv")
	require.True(t, ok)
	assert.Equal(t, "uv", rec.CommandName)
}

func TestResolveCommandName_ConflictAppendsVariant(t *testing.T) {
	reg := &Registry{Packages: map[string]Record{
		"uv": {RepoName: "uv", CommandName: "uv"},
	}}
	name, err := reg.ResolveCommandName("uv", "uvx")
	require.NoError(t, err)
	assert.Equal(t, "uv-uvx", name)
}

func TestResolveCommandName_ConflictAppendsNumericSuffix(t *testing.T) {
	reg := &Registry{Packages: map[string]Record{
		"a": {CommandName: "find"},
		"b": {CommandName: "find-2"},
	}}
	name, err := reg.ResolveCommandName("find", "")
	require.NoError(t, err)
	assert.Equal(t, "find-3", name)
}

func TestByRepoName_GroupsVariantSiblings(t *testing.T) {
	reg := &Registry{Packages: map[string]Record{
		"uv":      {RepoName: "uv", Variant: ""},
		"uv::uvx": {RepoName: "uv", Variant: "uvx"},
	}}
	siblings := reg.ByRepoName("uv")
	assert.Len(t, siblings, 2)
}
