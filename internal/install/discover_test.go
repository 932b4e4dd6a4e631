package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenget/wenget/internal/wgerr"
)

func TestDiscoverExecutables_ScoresPackageNameMatchHighest(t *testing.T) {
	root := t.TempDir()
	writeExecutable(t, filepath.Join(root, "uv"))
	writeExecutable(t, filepath.Join(root, "README.md"))
	require.NoError(t, os.Chmod(filepath.Join(root, "README.md"), 0o644))

	candidates, err := DiscoverExecutables(root, "uv")
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "uv", candidates[0].Path)
}

func TestDiscoverExecutables_MultiExecutablePackage(t *testing.T) {
	root := t.TempDir()
	writeExecutable(t, filepath.Join(root, "uv"))
	writeExecutable(t, filepath.Join(root, "uvx"))

	candidates, err := DiscoverExecutables(root, "uv")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	names := []string{candidates[0].Path, candidates[1].Path}
	assert.Contains(t, names, "uv")
	assert.Contains(t, names, "uvx")
}

func TestSelectCandidates_AutoYesTruncatesToThree(t *testing.T) {
	candidates := []Candidate{
		{Path: "a", Score: 90}, {Path: "b", Score: 80},
		{Path: "c", Score: 70}, {Path: "d", Score: 60},
	}
	selected, err := SelectCandidates(candidates, true)
	require.NoError(t, err)
	assert.Len(t, selected, 3)
}

func TestSelectCandidates_NoAutoYesNeedsConfirm(t *testing.T) {
	candidates := []Candidate{
		{Path: "a", Score: 90}, {Path: "b", Score: 80},
		{Path: "c", Score: 70}, {Path: "d", Score: 60},
	}
	_, err := SelectCandidates(candidates, false)
	require.Error(t, err)
	assert.True(t, wgerr.Is(err, wgerr.NeedsConfirm))
}

func TestSelectCandidates_ThreeOrFewerPassThroughWithoutConfirm(t *testing.T) {
	candidates := []Candidate{{Path: "a", Score: 90}, {Path: "b", Score: 80}}
	selected, err := SelectCandidates(candidates, false)
	require.NoError(t, err)
	assert.Len(t, selected, 2)
}

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0o755))
}
