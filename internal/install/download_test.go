package install

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_WritesFileAndVerifiesChecksum(t *testing.T) {
	content := []byte("release-asset-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	sum := sha256.Sum256(content)
	checksum := "sha256:" + hex.EncodeToString(sum[:])

	dir := t.TempDir()
	d := NewDownloader()
	path, err := Download(context.Background(), d, srv.URL, "asset.bin", dir, checksum, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, filepath.Join(dir, "asset.bin"), path)
}

func TestDownload_RetriesOn5xxThenFails(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := NewDownloader()
	_, err := Download(context.Background(), d, srv.URL, "asset.bin", t.TempDir(), "", nil)
	assert.Error(t, err)
	assert.Equal(t, downloadRetries+1, calls)
}

func TestDownload_DoesNotRetryOn4xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader()
	_, err := Download(context.Background(), d, srv.URL, "asset.bin", t.TempDir(), "", nil)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
