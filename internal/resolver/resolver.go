// Package resolver classifies an opaque user-supplied identifier into one
// of the input kinds §4.6 enumerates; the CLI's add command drives the
// acquisition path for each kind.
package resolver

import (
	"net/url"
	"os"
	"strings"

	"github.com/wenget/wenget/internal/bucket"
	"github.com/wenget/wenget/internal/registry"
)

// Kind enumerates the classification outcomes (§4.6, first match wins).
type Kind int

const (
	InstalledKey Kind = iota
	LocalArchive
	LocalBinary
	LocalScript
	DirectAsset
	DirectRepo
	Glob
	BucketName
)

func (k Kind) String() string {
	switch k {
	case InstalledKey:
		return "installed_key"
	case LocalArchive:
		return "local_archive"
	case LocalBinary:
		return "local_binary"
	case LocalScript:
		return "local_script"
	case DirectAsset:
		return "direct_asset"
	case DirectRepo:
		return "direct_repo"
	case Glob:
		return "glob"
	case BucketName:
		return "bucket_name"
	default:
		return "unknown"
	}
}

// Classification is the resolver's verdict on one input string.
type Classification struct {
	Kind  Kind
	Input string
	// Path is set for LocalArchive/LocalBinary/LocalScript.
	Path string
	// URL is set for DirectAsset/DirectRepo.
	URL string
}

// knownForges lists the code-hosting hosts recognized for DirectRepo
// classification (§4.6 step 3 "Host is a known code-forge").
var knownForges = map[string]bool{
	"github.com":    true,
	"gitlab.com":    true,
	"codeberg.org":  true,
	"sr.ht":         true,
	"bitbucket.org": true,
}

// scriptExtensions map a file extension to whether it's a recognized
// script type for local-path classification.
var scriptExtensions = map[string]bool{
	".ps1": true, ".sh": true, ".bash": true, ".py": true, ".bat": true, ".cmd": true,
}

var archiveExtensions = map[string]bool{
	".zip": true, ".tar.gz": true, ".tgz": true, ".tar.xz": true, ".txz": true,
	".tar.bz2": true, ".tbz2": true, ".7z": true,
}

// Classify implements §4.6's ordered classification. reg is consulted for
// step 1; mgr is not consulted, so a BucketName result is unverified and
// the caller looks the name up in the buckets.
func Classify(input string, reg *registry.Registry, mgr *bucket.Manager) Classification {
	// 1. Exact existing installed key.
	if reg != nil {
		if _, ok := reg.Get(input); ok {
			return Classification{Kind: InstalledKey, Input: input}
		}
	}

	// 2. Local filesystem path that exists.
	if info, err := os.Stat(input); err == nil {
		return Classification{Kind: classifyLocalPath(input, info), Input: input, Path: input}
	}

	// 3. Parses as a URL.
	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		return Classification{Kind: classifyURL(u, input), Input: input, URL: input}
	}

	// 4. Glob metacharacters.
	if bucket.IsGlob(input) {
		return Classification{Kind: Glob, Input: input}
	}

	// 5. Bucket name lookup.
	return Classification{Kind: BucketName, Input: input}
}

func classifyLocalPath(path string, info os.FileInfo) Kind {
	lower := strings.ToLower(path)
	for ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return LocalArchive
		}
	}
	for ext := range scriptExtensions {
		if strings.HasSuffix(lower, ext) {
			return LocalScript
		}
	}
	if !info.IsDir() && info.Mode()&0o111 != 0 {
		return LocalBinary
	}
	return LocalBinary
}

func classifyURL(u *url.URL, raw string) Kind {
	if strings.Contains(u.Path, "/releases/download/") {
		return DirectAsset
	}
	if knownForges[u.Host] {
		segments := nonEmptySegments(u.Path)
		if len(segments) == 2 {
			return DirectRepo
		}
	}
	return DirectAsset
}

func nonEmptySegments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
