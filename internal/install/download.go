package install

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wenget/wenget/internal/log"
	"github.com/wenget/wenget/internal/wgerr"
)

// downloadRetries is §4.4 step 1's "two retries with exponential backoff".
const downloadRetries = 2

// Downloader streams a release asset into the cache directory with
// bounded retry on transient failure.
type Downloader struct {
	Client         *http.Client
	ConnectTimeout time.Duration
	TotalTimeout   time.Duration
}

// NewDownloader returns a Downloader using §5's default budgets (10s
// connect / 30s total).
func NewDownloader() *Downloader {
	connectTimeout := 10 * time.Second
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext
	return &Downloader{
		Client:         &http.Client{Transport: transport},
		ConnectTimeout: connectTimeout,
		TotalTimeout:   30 * time.Second,
	}
}

// Progress is invoked periodically during Download with the bytes written
// so far and (if known) the total size; external collaborators (§1) own
// how this is rendered.
type Progress func(written, total int64)

// Download streams url into downloadsDir/<basename>, retrying transient
// failures with exponential backoff. It returns the path written to and,
// if checksum (formatted "sha256:<hex>") is non-empty, verifies it and
// surfaces a mismatch as a warning rather than a hard failure (advisory
// per §3).
func Download(ctx context.Context, d *Downloader, url, assetName, downloadsDir, checksum string, onProgress Progress) (string, error) {
	if err := os.MkdirAll(downloadsDir, 0o755); err != nil {
		return "", fmt.Errorf("install: creating downloads dir: %w", err)
	}
	dest := filepath.Join(downloadsDir, assetName)

	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt <= downloadRetries; attempt++ {
		if attempt > 0 {
			log.Warn("download retry", "asset", assetName, "attempt", attempt, "error", lastErr)
			time.Sleep(backoff)
			backoff *= 2
		}
		err := attemptDownload(ctx, d, url, dest, onProgress)
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	if lastErr != nil {
		return "", lastErr
	}

	if checksum != "" {
		if err := verifyChecksum(dest, checksum); err != nil {
			log.Warn("checksum mismatch", "asset", assetName, "error", err)
		}
	}
	return dest, nil
}

func attemptDownload(ctx context.Context, d *Downloader, url, dest string, onProgress Progress) error {
	ctx, cancel := context.WithTimeout(ctx, d.TotalTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return wgerr.Wrap(wgerr.NetworkFatal, "install: building download request", err)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return wgerr.Wrap(wgerr.NetworkTransient, "install: download request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return wgerr.New(wgerr.NetworkTransient, fmt.Sprintf("install: download status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return wgerr.New(wgerr.NetworkFatal, fmt.Sprintf("install: download status %d", resp.StatusCode))
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("install: creating %s: %w", dest, err)
	}
	defer out.Close()

	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("install: writing %s: %w", dest, writeErr)
			}
			written += int64(n)
			if onProgress != nil {
				onProgress(written, resp.ContentLength)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return wgerr.Wrap(wgerr.NetworkTransient, "install: reading download body", readErr)
		}
	}
	return nil
}

func retryable(err error) bool {
	return wgerr.Is(err, wgerr.NetworkTransient)
}

func verifyChecksum(path, checksum string) error {
	const prefix = "sha256:"
	if !strings.HasPrefix(checksum, prefix) {
		return fmt.Errorf("install: unsupported checksum format %q", checksum)
	}
	want := strings.TrimPrefix(checksum, prefix)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return fmt.Errorf("install: checksum mismatch: want %s, got %s", want, got)
	}
	return nil
}
