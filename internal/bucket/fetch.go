package bucket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wenget/wenget/internal/log"
)

// fetchTimeout bounds a single bucket manifest fetch (§4.3: "10-second
// timeout"; §5 lowers the aggregate refresh budget to the same 10s).
const fetchTimeout = 10 * time.Second

// poolBound caps how many bucket fetches run concurrently, matching §5's
// "typical: min(4, N)" task pool guidance.
const poolBound = 4

// Fetcher retrieves a bucket's manifest document over HTTP.
type Fetcher struct {
	Client *http.Client
}

// NewFetcher returns a Fetcher with a default client, timeouts applied
// per-request via context rather than on the client itself so a slow
// bucket doesn't poison fetches for the rest of a refresh.
func NewFetcher() *Fetcher {
	return &Fetcher{Client: &http.Client{}}
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) (Manifest, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Manifest{}, fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return Manifest{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Manifest{}, fmt.Errorf("fetching %s: status %d: %s", url, resp.StatusCode, body)
	}

	var m Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest from %s: %w", url, err)
	}
	return m, nil
}

// RefreshResult is one bucket's outcome from a parallel refresh.
type RefreshResult struct {
	Name     string
	Manifest Manifest
	Err      error
}

// RefreshAll fetches every bucket's manifest concurrently (pool bound
// poolBound), one task per bucket as §5 specifies. A per-bucket failure
// does not abort the others; the caller decides whether to keep the last
// good copy for a failed bucket.
func (f *Fetcher) RefreshAll(ctx context.Context, records []Record) []RefreshResult {
	results := make([]RefreshResult, len(records))
	sem := make(chan struct{}, poolBound)
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	for i, r := range records {
		i, r := i, r
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			m, err := f.fetchOne(ctx, r.URL)
			mu.Lock()
			results[i] = RefreshResult{Name: r.Name, Manifest: m, Err: err}
			mu.Unlock()
			if err != nil {
				log.Warn("bucket refresh failed", "bucket", r.Name, "error", err)
			}
			return nil // per-bucket errors are recorded, never abort the group
		})
	}
	_ = g.Wait()
	return results
}
