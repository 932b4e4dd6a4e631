//go:build !windows

package selfupdate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplace_SameFilesystemRename(t *testing.T) {
	dir := t.TempDir()
	running := filepath.Join(dir, "wenget")
	newBin := filepath.Join(dir, "wenget.new")

	require.NoError(t, os.WriteFile(running, []byte("old"), 0o755))
	require.NoError(t, os.WriteFile(newBin, []byte("new"), 0o644))

	require.NoError(t, Replace(newBin, running))

	content, err := os.ReadFile(running)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))

	_, err = os.Stat(newBin)
	assert.True(t, os.IsNotExist(err))

	info, err := os.Stat(running)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestSameFilesystem_SameDirIsTrue(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o644))
	assert.True(t, sameFilesystem(a, b))
}
