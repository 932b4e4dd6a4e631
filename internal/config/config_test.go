package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrefix_LaysOutExpectedTree(t *testing.T) {
	root := "/tmp/example-prefix"
	p := NewPrefix(root)
	assert.Equal(t, filepath.Join(root, "apps"), p.AppsDir)
	assert.Equal(t, filepath.Join(root, "bin"), p.BinDir)
	assert.Equal(t, filepath.Join(root, "cache", "downloads"), p.DownloadsDir)
	assert.Equal(t, filepath.Join(root, "buckets.json"), p.BucketsFile)
	assert.Equal(t, filepath.Join(root, "installed.json"), p.InstalledFile)
}

func TestPrefix_EnsureLayout_CreatesDirectories(t *testing.T) {
	root := t.TempDir()
	p := NewPrefix(filepath.Join(root, "prefix"))
	require.NoError(t, p.EnsureLayout())
	assert.DirExists(t, p.AppsDir)
	assert.DirExists(t, p.BinDir)
	assert.DirExists(t, p.DownloadsDir)
}

func TestDefaultGlobalConfig_MatchesSpecBudgets(t *testing.T) {
	cfg := DefaultGlobalConfig()
	assert.Equal(t, 10_000_000_000, int(cfg.HTTPConnectTimeout))
	assert.Equal(t, 30_000_000_000, int(cfg.HTTPTotalTimeout))
	assert.False(t, cfg.AutoYes)
}
