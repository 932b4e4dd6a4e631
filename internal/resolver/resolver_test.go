package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenget/wenget/internal/registry"
)

func TestClassify_InstalledKeyWinsFirst(t *testing.T) {
	reg := &registry.Registry{Packages: map[string]registry.Record{
		"uv": {RepoName: "uv"},
	}}
	c := Classify("uv", reg, nil)
	assert.Equal(t, InstalledKey, c.Kind)
}

func TestClassify_LocalArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	c := Classify(path, nil, nil)
	assert.Equal(t, LocalArchive, c.Kind)
}

func TestClassify_LocalScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh"), 0o755))
	c := Classify(path, nil, nil)
	assert.Equal(t, LocalScript, c.Kind)
}

func TestClassify_DirectAssetURL(t *testing.T) {
	c := Classify("https://github.com/astral-sh/uv/releases/download/0.1.0/uv.tar.gz", nil, nil)
	assert.Equal(t, DirectAsset, c.Kind)
}

func TestClassify_DirectRepoURL(t *testing.T) {
	c := Classify("https://github.com/astral-sh/uv", nil, nil)
	assert.Equal(t, DirectRepo, c.Kind)
}

func TestClassify_GlobPattern(t *testing.T) {
	c := Classify("uv-*", nil, nil)
	assert.Equal(t, Glob, c.Kind)
}

func TestClassify_FallsBackToBucketName(t *testing.T) {
	c := Classify("ripgrep", nil, nil)
	assert.Equal(t, BucketName, c.Kind)
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "1.0.0", NormalizeTag("v1.0.0"))
}

func TestNewerTag(t *testing.T) {
	assert.True(t, NewerTag("1.0.0", "1.1.0"))
	assert.False(t, NewerTag("1.1.0", "1.0.0"))
	assert.False(t, NewerTag("1.0.0", "v1.0.0"))
}
