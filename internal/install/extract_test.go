package install

import (
	"archive/tar"
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenget/wenget/internal/platform"
)

func writeTestZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asset.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func writeTestTarGz(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asset.tar.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := pgzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, content := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Size: int64(len(content)), Mode: 0o755}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return path
}

func TestExtract_Zip(t *testing.T) {
	archivePath := writeTestZip(t, map[string]string{"uv": "binary-contents"})
	destDir := t.TempDir()

	require.NoError(t, Extract(archivePath, platform.Zip, destDir))
	data, err := os.ReadFile(filepath.Join(destDir, "uv"))
	require.NoError(t, err)
	assert.Equal(t, "binary-contents", string(data))
}

func TestExtract_TarGz(t *testing.T) {
	archivePath := writeTestTarGz(t, map[string]string{"bin/uv": "binary-contents"})
	destDir := t.TempDir()

	require.NoError(t, Extract(archivePath, platform.TarGz, destDir))
	data, err := os.ReadFile(filepath.Join(destDir, "bin", "uv"))
	require.NoError(t, err)
	assert.Equal(t, "binary-contents", string(data))
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../../etc/passwd")
	require.NoError(t, err)
	_, err = w.Write([]byte("pwned"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	destDir := t.TempDir()
	err = Extract(path, platform.Zip, destDir)
	assert.Error(t, err)
}

func TestSafeJoin_RejectsEscape(t *testing.T) {
	_, err := safeJoin("/dest", "../outside")
	assert.Error(t, err)

	ok, err := safeJoin("/dest", "inside/file")
	require.NoError(t, err)
	assert.Equal(t, "/dest/inside/file", ok)
}
