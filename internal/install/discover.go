package install

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/wenget/wenget/internal/wgerr"
)

// Candidate is one scored executable-discovery hit (§4.4 step 4).
type Candidate struct {
	Path  string // relative to the extraction root
	Score int
}

var trailingVersionSuffix = regexp.MustCompile(`-v\d+$`)

// normalizeForMatch strips platform tokens and a trailing "-v\d+" suffix
// from a filename (minus extension) the way the install pipeline expects
// residual names to compare against the package name.
func normalizeForMatch(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	tokens := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	recognized := map[string]bool{
		"windows": true, "win": true, "linux": true, "darwin": true, "macos": true,
		"mac": true, "osx": true, "apple": true, "freebsd": true, "unknown": true, "pc": true,
		"x86_64": true, "amd64": true, "x64": true, "aarch64": true, "arm64": true,
		"armv7": true, "armv6": true, "armhf": true, "i686": true, "i386": true, "386": true, "x86": true,
		"musl": true, "gnu": true, "gnueabihf": true, "msvc": true,
	}
	var kept []string
	for _, t := range tokens {
		if recognized[t] {
			continue
		}
		kept = append(kept, t)
	}
	joined := strings.Join(kept, "-")
	return trailingVersionSuffix.ReplaceAllString(joined, "")
}

// DiscoverExecutables walks root and scores every regular file as a
// candidate executable for packageName (§4.4 step 4). Only candidates
// with score > 0 are returned, highest first.
func DiscoverExecutables(root, packageName string) ([]Candidate, error) {
	normalizedPkg := normalizeForMatch(packageName)
	var candidates []Candidate

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		normalizedName := normalizeForMatch(base)

		score := 0
		if normalizedName == normalizedPkg {
			score += 60
		}
		if hasExecuteBit(info) || strings.EqualFold(filepath.Ext(base), ".exe") {
			score += 40
		}
		if isRootOrBinDir(rel) {
			score += 20
		}
		if normalizedPkg != "" && strings.Contains(normalizedName, normalizedPkg) {
			score += 10
		}

		if score > 0 {
			candidates = append(candidates, Candidate{Path: rel, Score: score})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	return candidates, nil
}

func isRootOrBinDir(relPath string) bool {
	dir := filepath.Dir(relPath)
	return dir == "." || dir == "bin"
}

func hasExecuteBit(info fs.FileInfo) bool {
	if runtime.GOOS == "windows" {
		return false
	}
	return info.Mode()&0o111 != 0
}

// SelectCandidates applies §4.4 step 4's "more than three → multi-select;
// with auto-yes, select up to three highest-scoring" rule. When more than
// three candidates were discovered and autoYes is false, it returns
// wgerr.NeedsConfirm rather than silently installing every discovered
// executable, mirroring the CompatibleConfirm gate used for degraded
// platform matches.
func SelectCandidates(candidates []Candidate, autoYes bool) ([]Candidate, error) {
	if len(candidates) <= 3 {
		return candidates, nil
	}
	if !autoYes {
		return nil, wgerr.New(wgerr.NeedsConfirm, "more than three executables were discovered; re-run with --yes to accept the top three")
	}
	return candidates[:3], nil
}
