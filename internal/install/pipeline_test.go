package install

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenget/wenget/internal/bucket"
	"github.com/wenget/wenget/internal/config"
	"github.com/wenget/wenget/internal/registry"
)

func writeArchiveFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".tar.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := pgzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	content := "#!/bin/sh\necho hi\n"
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Size: int64(len(content)), Mode: 0o755}))
	_, err = tw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return path
}

func writeMultiExecutableArchiveFixture(t *testing.T, names ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), names[0]+"-multi.tar.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := pgzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	content := "#!/bin/sh\necho hi\n"
	for _, name := range names {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Size: int64(len(content)), Mode: 0o755}))
		_, err = tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return path
}

func newTestPipeline(t *testing.T) (*Pipeline, config.Prefix) {
	t.Helper()
	root := t.TempDir()
	prefix := config.NewPrefix(root)
	require.NoError(t, prefix.EnsureLayout())
	reg, err := registry.Load(prefix.InstalledFile)
	require.NoError(t, err)
	return NewPipeline(prefix, reg), prefix
}

func TestInstallLocalArchive_PlacesAndLaunches(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("launcher symlink semantics differ on windows")
	}
	p, prefix := newTestPipeline(t)
	archivePath := writeArchiveFixture(t, "uv")

	rec, err := p.InstallLocalArchive(context.Background(), Request{
		RepoName:       "uv",
		Version:        "0.1.0",
		PlatformKey:    "linux-x86_64-gnu",
		DesiredCommand: "uv",
		Source:         registry.Source{Kind: registry.SourceDirectAsset, Name: archivePath},
		AutoYes:        true,
	}, archivePath)

	require.NoError(t, err)
	assert.Equal(t, "uv", rec.CommandName)
	assert.Contains(t, rec.Files, "uv")

	launcherPath := filepath.Join(prefix.BinDir, "uv")
	info, err := os.Lstat(launcherPath)
	require.NoError(t, err)
	assert.True(t, info.Mode()&os.ModeSymlink != 0)

	_, ok := p.Registry.Get("uv")
	assert.True(t, ok)
}

func TestInstallLocalArchive_ConflictAppendsVariant(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("launcher symlink semantics differ on windows")
	}
	p, _ := newTestPipeline(t)
	archivePath := writeArchiveFixture(t, "uv")

	_, err := p.InstallLocalArchive(context.Background(), Request{
		RepoName:       "uv",
		DesiredCommand: "uv",
		Source:         registry.Source{Kind: registry.SourceDirectAsset},
		AutoYes:        true,
	}, archivePath)
	require.NoError(t, err)

	archivePath2 := writeArchiveFixture(t, "uv")
	rec2, err := p.InstallLocalArchive(context.Background(), Request{
		RepoName:       "uv",
		Variant:        "musl",
		DesiredCommand: "uv",
		Source:         registry.Source{Kind: registry.SourceDirectAsset},
		AutoYes:        true,
	}, archivePath2)
	require.NoError(t, err)
	assert.Equal(t, "uv-musl", rec2.CommandName)
}

// TestInstallLocalArchive_MultiExecutableYieldsSiblingRecords covers §8
// scenario 3: an archive extracting to uv + uvx must install both, claim
// both command names, and write two registry records sharing repo_name.
func TestInstallLocalArchive_MultiExecutableYieldsSiblingRecords(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("launcher symlink semantics differ on windows")
	}
	p, prefix := newTestPipeline(t)
	archivePath := writeMultiExecutableArchiveFixture(t, "uv", "uvx")

	rec, err := p.InstallLocalArchive(context.Background(), Request{
		RepoName:       "uv",
		Version:        "0.1.0",
		PlatformKey:    "linux-x86_64-gnu",
		DesiredCommand: "uv",
		Source:         registry.Source{Kind: registry.SourceDirectAsset, Name: archivePath},
		AutoYes:        true,
	}, archivePath)
	require.NoError(t, err)
	assert.Equal(t, "uv", rec.CommandName)

	for _, cmd := range []string{"uv", "uvx"} {
		_, err := os.Lstat(filepath.Join(prefix.BinDir, cmd))
		require.NoError(t, err, "launcher for %s should exist", cmd)
	}

	siblings := p.Registry.ByRepoName("uv")
	require.Len(t, siblings, 2)
	commandNames := map[string]bool{}
	for _, s := range siblings {
		assert.Equal(t, "uv", s.RepoName)
		commandNames[s.CommandName] = true
	}
	assert.True(t, commandNames["uv"])
	assert.True(t, commandNames["uvx"])

	uvxRec, ok := p.Registry.Get("uv::uvx")
	require.True(t, ok)
	assert.Equal(t, "uvx", uvxRec.CommandName)
	assert.Equal(t, rec.Key(), uvxRec.ParentPackage)
}

func TestInstallScript_PlacesAndLaunchesDirectly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("script launcher semantics differ on windows")
	}
	p, prefix := newTestPipeline(t)

	scriptPath := filepath.Join(t.TempDir(), "install.sh")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\necho hi\n"), 0o755))

	rec, err := p.InstallScript(context.Background(), Request{
		RepoName:       "myscript",
		DesiredCommand: "myscript",
		Source:         registry.Source{Kind: registry.SourceLocalScript, Name: scriptPath},
	}, bucket.Bash, scriptPath)

	require.NoError(t, err)
	assert.Equal(t, "myscript", rec.CommandName)

	_, err = os.Lstat(filepath.Join(prefix.BinDir, "myscript"))
	require.NoError(t, err)
}
