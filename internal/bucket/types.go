// Package bucket implements the bucket list and the merged manifest
// cache: fetching remote manifest documents, merging them in bucket
// insertion order, and persisting a TTL-bounded snapshot (§3, §4.3).
package bucket

import (
	"encoding/json"
	"time"
)

// DefaultTTL is how long a built manifest cache stays authoritative
// before a fresh read path must rebuild it (I4).
const DefaultTTL = 24 * time.Hour

// BinaryRecord is one downloadable option for a package on a given
// platform key; the ordered list on PackageEntry.Platforms preserves
// every variant discovered for that platform (baseline vs desktop, musl
// vs glibc, etc).
type BinaryRecord struct {
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	AssetName string `json:"asset_name"`
	Checksum  string `json:"checksum,omitempty"`
}

// PackageEntry is a bucket-authored package manifest entry.
type PackageEntry struct {
	Name        string                    `json:"name"`
	Repo        string                    `json:"repo,omitempty"`
	Description string                    `json:"description,omitempty"`
	Homepage    string                    `json:"homepage,omitempty"`
	License     string                    `json:"license,omitempty"`
	Platforms   map[string][]BinaryRecord `json:"platforms"`
}

// ScriptType enumerates the interpreters a ScriptEntry can target.
type ScriptType string

const (
	PowerShell ScriptType = "powershell"
	Bash       ScriptType = "bash"
	Batch      ScriptType = "batch"
	Python     ScriptType = "python"
)

// ScriptEntry is a bucket-authored script manifest entry. Scripts carry no
// platform key: a script runs wherever its interpreter is found.
type ScriptEntry struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url"`
	ScriptType  ScriptType `json:"script_type"`
	Repo        string     `json:"repo,omitempty"`
	Homepage    string     `json:"homepage,omitempty"`
	License     string     `json:"license,omitempty"`
}

// Manifest is the wire format of a bucket's remote JSON document (§6).
type Manifest struct {
	Packages []PackageEntry `json:"packages"`
	Scripts  []ScriptEntry  `json:"scripts"`
}

// Record is a bucket's entry in the ordered bucket list.
type Record struct {
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	LastRefreshed time.Time `json:"last_refreshed"`
}

// OwnedPackage pairs a manifest entry with the name of the bucket that won
// it in the merge (the first bucket, in insertion order, to define that
// name). OwnedScript does the same for script entries.
type OwnedPackage struct {
	SourceBucket string
	Entry        PackageEntry
}

type OwnedScript struct {
	SourceBucket string
	Entry        ScriptEntry
}

// Cache is the merged, on-disk snapshot of every bucket's content (§3).
type Cache struct {
	Packages map[string]OwnedPackage `json:"-"`
	Scripts  map[string]OwnedScript  `json:"-"`
	BuiltAt  time.Time               `json:"built_at"`
	// BucketSignature lets the read path detect a changed bucket set
	// (insertion order or membership) without a full TTL expiry.
	BucketSignature string `json:"bucket_signature"`

	// wire-format mirrors of Packages/Scripts for JSON (un)marshaling,
	// since map values embedding SourceBucket need flattening.
	PackagesWire []wirePackage `json:"packages"`
	ScriptsWire  []wireScript  `json:"scripts"`
}

type wirePackage struct {
	SourceBucket string       `json:"source_bucket"`
	Entry        PackageEntry `json:"entry"`
}

type wireScript struct {
	SourceBucket string      `json:"source_bucket"`
	Entry        ScriptEntry `json:"entry"`
}

// NewCache returns an empty Cache with initialized maps, the zero value a
// repaired (corrupted) load should reset to.
func NewCache() *Cache {
	return &Cache{
		Packages: make(map[string]OwnedPackage),
		Scripts:  make(map[string]OwnedScript),
	}
}

// MarshalJSON flattens the Packages/Scripts maps into wire slices, in map
// iteration order (not sorted).
func (c *Cache) MarshalJSON() ([]byte, error) {
	type alias Cache
	cp := *c
	cp.PackagesWire = nil
	for name, op := range c.Packages {
		cp.PackagesWire = append(cp.PackagesWire, wirePackage{SourceBucket: op.SourceBucket, Entry: namedPackage(name, op.Entry)})
	}
	cp.ScriptsWire = nil
	for name, sc := range c.Scripts {
		cp.ScriptsWire = append(cp.ScriptsWire, wireScript{SourceBucket: sc.SourceBucket, Entry: namedScript(name, sc.Entry)})
	}
	return json.Marshal((*alias)(&cp))
}

// UnmarshalJSON rebuilds the Packages/Scripts maps from the wire slices.
func (c *Cache) UnmarshalJSON(data []byte) error {
	type alias Cache
	a := (*alias)(c)
	if err := json.Unmarshal(data, a); err != nil {
		return err
	}
	c.Packages = make(map[string]OwnedPackage, len(c.PackagesWire))
	for _, wp := range c.PackagesWire {
		c.Packages[wp.Entry.Name] = OwnedPackage{SourceBucket: wp.SourceBucket, Entry: wp.Entry}
	}
	c.Scripts = make(map[string]OwnedScript, len(c.ScriptsWire))
	for _, ws := range c.ScriptsWire {
		c.Scripts[ws.Entry.Name] = OwnedScript{SourceBucket: ws.SourceBucket, Entry: ws.Entry}
	}
	c.PackagesWire = nil
	c.ScriptsWire = nil
	return nil
}

func namedPackage(name string, e PackageEntry) PackageEntry {
	e.Name = name
	return e
}

func namedScript(name string, e ScriptEntry) ScriptEntry {
	e.Name = name
	return e
}

// Expired reports whether the cache must be rebuilt before a fresh read:
// stale by TTL, or the bucket set's signature no longer matches.
func (c *Cache) Expired(now time.Time, currentSignature string) bool {
	if c.BuiltAt.IsZero() {
		return true
	}
	if now.Sub(c.BuiltAt) > DefaultTTL {
		return true
	}
	return c.BucketSignature != currentSignature
}
