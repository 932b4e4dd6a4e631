package bucket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const samplePackageManifest = `{
  "packages": [
    {"name": "uv", "repo": "https://github.com/astral-sh/uv", "platforms": {
      "linux-x86_64-gnu": [{"url": "https://example.com/uv.tar.gz", "size": 100, "asset_name": "uv.tar.gz"}]
    }}
  ],
  "scripts": []
}`

func TestManager_AddBucket_FetchesAndPersists(t *testing.T) {
	srv := manifestServer(t, samplePackageManifest)
	dir := t.TempDir()

	mgr, err := NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, mgr.AddBucket(context.Background(), "main", srv.URL))

	assert.Len(t, mgr.Buckets(), 1)
	pkg, ok := mgr.Lookup("uv")
	require.True(t, ok)
	assert.Equal(t, "main", pkg.SourceBucket)

	assert.FileExists(t, filepath.Join(dir, "buckets.json"))
	assert.FileExists(t, filepath.Join(dir, "cache", "manifest-cache.json"))
}

func TestManager_AddBucket_RejectsDuplicateName(t *testing.T) {
	srv := manifestServer(t, samplePackageManifest)
	dir := t.TempDir()
	mgr, err := NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, mgr.AddBucket(context.Background(), "main", srv.URL))
	err = mgr.AddBucket(context.Background(), "main", srv.URL)
	assert.Error(t, err)
}

func TestManager_AddRemove_IsNoOpOnMergedContent(t *testing.T) {
	srv := manifestServer(t, samplePackageManifest)
	dir := t.TempDir()
	mgr, err := NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, mgr.AddBucket(context.Background(), "main", srv.URL))
	_, ok := mgr.Lookup("uv")
	require.True(t, ok)

	require.NoError(t, mgr.RemoveBucket("main"))
	_, ok = mgr.Lookup("uv")
	assert.False(t, ok)
}

func TestMerge_FirstBucketWins(t *testing.T) {
	a := Manifest{Packages: []PackageEntry{{Name: "tool", Repo: "bucket-a"}}}
	b := Manifest{Packages: []PackageEntry{{Name: "tool", Repo: "bucket-b"}}}
	merged := Merge([]string{"a", "b"}, map[string]Manifest{"a": a, "b": b})
	assert.Equal(t, "a", merged.Packages["tool"].SourceBucket)
	assert.Equal(t, "bucket-a", merged.Packages["tool"].Entry.Repo)
}

func TestCache_RoundTripsThroughJSON(t *testing.T) {
	c := NewCache()
	c.Packages["uv"] = OwnedPackage{SourceBucket: "main", Entry: PackageEntry{Name: "uv"}}
	data, err := c.MarshalJSON()
	require.NoError(t, err)

	out := NewCache()
	require.NoError(t, out.UnmarshalJSON(data))
	assert.Contains(t, out.Packages, "uv")
	assert.Equal(t, "main", out.Packages["uv"].SourceBucket)
}
