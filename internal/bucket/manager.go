package bucket

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wenget/wenget/internal/jsonstore"
	"github.com/wenget/wenget/internal/log"
)

// Manager owns the bucket list and the merged manifest cache for one
// prefix, and is the single entry point the rest of wenget uses to read
// or invalidate bucket-sourced package data.
type Manager struct {
	listPath  string
	cachePath string

	list    *List
	cache   *Cache
	fetcher *Fetcher

	// lastManifests retains the last good manifest per bucket so a
	// transient per-bucket refresh failure doesn't blank out packages
	// that were previously known (§4.3 "keep the last good copy").
	lastManifests map[string]Manifest
}

// NewManager loads (or initializes) the bucket list and manifest cache
// under prefixRoot (buckets.json and cache/manifest-cache.json).
func NewManager(prefixRoot string) (*Manager, error) {
	listPath := filepath.Join(prefixRoot, "buckets.json")
	cachePath := filepath.Join(prefixRoot, "cache", "manifest-cache.json")

	list, err := LoadList(listPath)
	if err != nil {
		return nil, err
	}

	cache := NewCache()
	if err := jsonstore.Load(cachePath, cache); err != nil {
		return nil, err
	}
	if cache.Packages == nil {
		cache.Packages = make(map[string]OwnedPackage)
	}
	if cache.Scripts == nil {
		cache.Scripts = make(map[string]OwnedScript)
	}

	return &Manager{
		listPath:      listPath,
		cachePath:     cachePath,
		list:          list,
		cache:         cache,
		fetcher:       NewFetcher(),
		lastManifests: make(map[string]Manifest),
	}, nil
}

// AddBucket fetches url's manifest once to validate it, appends the
// bucket record, persists the list, and invalidates the cache.
func (m *Manager) AddBucket(ctx context.Context, name, url string) error {
	if err := m.list.Add(name, url); err != nil {
		return err
	}
	manifest, err := m.fetcher.fetchOne(ctx, url)
	if err != nil {
		// Roll back the append; a bucket that fails to validate is not added.
		m.list.Remove(name)
		return fmt.Errorf("bucket %q: %w", name, err)
	}
	m.lastManifests[name] = manifest
	m.list.MarkRefreshed(name, time.Now())
	if err := m.list.Save(); err != nil {
		return err
	}
	return m.rebuildLocked()
}

// RemoveBucket deletes the named bucket and rebuilds the cache.
func (m *Manager) RemoveBucket(name string) error {
	if !m.list.Remove(name) {
		return fmt.Errorf("bucket: %q not found", name)
	}
	delete(m.lastManifests, name)
	if err := m.list.Save(); err != nil {
		return err
	}
	return m.rebuildLocked()
}

// Buckets returns the bucket records in insertion order.
func (m *Manager) Buckets() []Record {
	return append([]Record(nil), m.list.Records...)
}

// Refresh re-fetches every bucket's manifest in parallel (§4.3 "Bucket
// refresh"). Per-bucket failures keep the last good copy in memory and
// are returned to the caller as a map of bucket name to error, without
// aborting the rebuild for the buckets that did succeed.
func (m *Manager) Refresh(ctx context.Context) map[string]error {
	results := m.fetcher.RefreshAll(ctx, m.list.Records)
	failures := make(map[string]error)
	now := time.Now()
	for _, r := range results {
		if r.Err != nil {
			failures[r.Name] = r.Err
			continue
		}
		m.lastManifests[r.Name] = r.Manifest
		m.list.MarkRefreshed(r.Name, now)
	}
	_ = m.list.Save()
	if err := m.rebuildLocked(); err != nil {
		log.Warn("manifest cache rebuild failed", "error", err)
	}
	return failures
}

// EnsureFresh rebuilds the cache if it is missing, stale (age > TTL), or
// the bucket set's signature changed since it was last built (I4). This is
// the gate every list/search/resolve operation calls before reading.
func (m *Manager) EnsureFresh(ctx context.Context) error {
	sig := m.list.Signature()
	if !m.cache.Expired(time.Now(), sig) {
		return nil
	}
	m.Refresh(ctx)
	return nil
}

func (m *Manager) rebuildLocked() error {
	order := make([]string, len(m.list.Records))
	for i, r := range m.list.Records {
		order[i] = r.Name
	}
	merged := Merge(order, m.lastManifests)
	merged.BuiltAt = time.Now()
	merged.BucketSignature = m.list.Signature()
	m.cache = merged
	return jsonstore.Save(m.cachePath, m.cache)
}

// Cache exposes the current merged snapshot for read operations.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Lookup resolves name against the cache by exact package name only; glob
// patterns are matched by Glob, not here.
func (m *Manager) Lookup(name string) (OwnedPackage, bool) {
	if pkg, ok := m.cache.Packages[name]; ok {
		return pkg, true
	}
	return OwnedPackage{}, false
}

// LookupScript mirrors Lookup for scripts.
func (m *Manager) LookupScript(name string) (OwnedScript, bool) {
	sc, ok := m.cache.Scripts[name]
	return sc, ok
}

// IsGlob reports whether name contains glob metacharacters.
func IsGlob(name string) bool {
	return strings.ContainsAny(name, "*?")
}

// Glob returns every package name in the cache matching the glob pattern.
func (m *Manager) Glob(pattern string) []string {
	var out []string
	for name := range m.cache.Packages {
		if ok, _ := filepath.Match(pattern, name); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Search returns every package name containing kw as a case-insensitive
// substring.
func (m *Manager) Search(kw string) []string {
	kw = strings.ToLower(kw)
	var out []string
	for name := range m.cache.Packages {
		if strings.Contains(strings.ToLower(name), kw) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
