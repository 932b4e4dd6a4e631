// Package registry implements the installed-unit registry: the
// persisted record of every package, script, and variant wenget has
// placed on disk, keyed per §4.5.
package registry

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wenget/wenget/internal/jsonstore"
	"github.com/wenget/wenget/internal/wgerr"
)

// Source tags where an installed record's bits came from.
type SourceKind string

const (
	SourceBucket     SourceKind = "bucket"
	SourceDirectRepo SourceKind = "direct_repo"
	SourceLocalScript SourceKind = "local_script"
	SourceDirectAsset SourceKind = "direct_asset"
)

// Source is the tagged-variant origin of an installed record.
type Source struct {
	Kind SourceKind `json:"kind"`
	// Name holds the bucket name for SourceBucket, the URL for
	// SourceDirectRepo/SourceDirectAsset, or the original path for
	// SourceLocalScript.
	Name string `json:"name"`
}

// Record is one installed unit (§3 "Installed record").
type Record struct {
	RepoName    string `json:"repo_name"`
	Variant     string `json:"variant,omitempty"`
	Version     string `json:"version"`
	Platform    string `json:"platform"`
	InstallPath string `json:"install_path"`
	CommandName string `json:"command_name"`
	Files       []string `json:"files"`
	Source      Source `json:"source"`

	AssetName     string `json:"asset_name,omitempty"`
	ParentPackage string `json:"parent_package,omitempty"`
	Description   string `json:"description,omitempty"`
	ScriptType    string `json:"script_type,omitempty"`
}

// Key derives the registry key for r: repo_name, or repo_name::variant
// when a variant is set (§4.5).
func (r Record) Key() string {
	return Key(r.RepoName, r.Variant)
}

// Key constructs a registry key from its parts.
func Key(repoName, variant string) string {
	if variant == "" {
		return repoName
	}
	return repoName + "::" + variant
}

// SplitKey is the inverse of Key.
func SplitKey(key string) (repoName, variant string) {
	repoName, variant, found := strings.Cut(key, "::")
	if !found {
		return key, ""
	}
	return repoName, variant
}

// Registry is the persisted installed-unit map at installed.json.
type Registry struct {
	Packages map[string]Record `json:"packages"`
	path     string
}

// Load reads the registry at path, repairing it per §4.8 if corrupt.
func Load(path string) (*Registry, error) {
	reg := &Registry{path: path, Packages: make(map[string]Record)}
	if err := jsonstore.Load(path, reg); err != nil {
		return nil, err
	}
	if reg.Packages == nil {
		reg.Packages = make(map[string]Record)
	}
	return reg, nil
}

// Save persists the registry atomically (§4.4 step 8, §4.8).
func (r *Registry) Save() error {
	return jsonstore.Save(r.path, r)
}

// Put inserts or replaces a record under its derived key.
func (r *Registry) Put(rec Record) {
	r.Packages[rec.Key()] = rec
}

// Get returns the record for an exact key.
func (r *Registry) Get(key string) (Record, bool) {
	rec, ok := r.Packages[key]
	return rec, ok
}

// Delete removes the record for an exact key.
func (r *Registry) Delete(key string) {
	delete(r.Packages, key)
}

// ByRepoName returns every record (including variant siblings) whose
// RepoName matches, for bulk operations on the bare name (§4.5).
func (r *Registry) ByRepoName(repoName string) []Record {
	var out []Record
	for _, rec := range r.Packages {
		if rec.RepoName == repoName {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variant < out[j].Variant })
	return out
}

// CommandNames returns the set of command names currently claimed.
func (r *Registry) CommandNames() map[string]bool {
	out := make(map[string]bool, len(r.Packages))
	for _, rec := range r.Packages {
		out[rec.CommandName] = true
	}
	return out
}

// ResolveCommandName applies the conflict rule (§4.4 step 7): if taken,
// append "-{variant}" when a variant exists, else "-2", "-3", ... until
// unique. ConflictingCommand (practically unreachable) is surfaced if a
// name can't be made unique within a generous bound.
func (r *Registry) ResolveCommandName(desired, variant string) (string, error) {
	taken := r.CommandNames()
	if !taken[desired] {
		return desired, nil
	}
	if variant != "" {
		candidate := desired + "-" + variant
		if !taken[candidate] {
			return candidate, nil
		}
	}
	for i := 2; i < 10000; i++ {
		candidate := fmt.Sprintf("%s-%d", desired, i)
		if !taken[candidate] {
			return candidate, nil
		}
	}
	return "", wgerr.New(wgerr.ConflictingCommand, fmt.Sprintf("registry: could not produce a unique command name for %q", desired))
}

// InstallDir returns the per-unit install directory under prefix/apps for
// a given key (repo_name[::variant]).
func InstallDir(prefixRoot, repoName, variant string) string {
	return filepath.Join(prefixRoot, "apps", Key(repoName, variant))
}
