package resolver

import (
	"strings"

	"github.com/hashicorp/go-version"
)

// NormalizeTag strips a leading "v" so "v1.2.3" and "1.2.3" compare equal
// (§4.6 "Tag strings are accepted with or without a leading v").
func NormalizeTag(tag string) string {
	return strings.TrimPrefix(tag, "v")
}

// NewerTag reports whether candidate is a strictly newer version than
// current, used by `update` to decide whether a freshly fetched release
// is actually worth reinstalling. When either tag doesn't parse as a
// version (e.g. a rolling "nightly" tag), candidate counts as newer
// whenever it differs from current, since there's no ordering to trust
// otherwise.
func NewerTag(current, candidate string) bool {
	cur, errCur := version.NewVersion(NormalizeTag(current))
	cand, errCand := version.NewVersion(NormalizeTag(candidate))
	if errCur != nil || errCand != nil {
		return current != candidate
	}
	return cand.GreaterThan(cur)
}
