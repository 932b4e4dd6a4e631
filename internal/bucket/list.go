package bucket

import (
	"fmt"
	"strings"
	"time"

	"github.com/wenget/wenget/internal/jsonstore"
)

// List is the ordered bucket list persisted at buckets.json (I5: ordering
// preserved across reload, duplicate names rejected on add).
type List struct {
	Records []Record `json:"buckets"`
	path    string
}

// LoadList reads the bucket list at path, repairing it per §4.8 if corrupt.
func LoadList(path string) (*List, error) {
	l := &List{path: path}
	if err := jsonstore.Load(path, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Save persists the bucket list atomically.
func (l *List) Save() error {
	return jsonstore.Save(l.path, l)
}

// Add appends a new bucket record, rejecting a duplicate name.
func (l *List) Add(name, url string) error {
	for _, r := range l.Records {
		if r.Name == name {
			return fmt.Errorf("bucket: %q already exists", name)
		}
	}
	l.Records = append(l.Records, Record{Name: name, URL: url})
	return nil
}

// Remove deletes the bucket record with the given name, preserving the
// relative order of the rest (I5).
func (l *List) Remove(name string) bool {
	for i, r := range l.Records {
		if r.Name == name {
			l.Records = append(l.Records[:i], l.Records[i+1:]...)
			return true
		}
	}
	return false
}

// MarkRefreshed stamps the named bucket's LastRefreshed time.
func (l *List) MarkRefreshed(name string, at time.Time) {
	for i, r := range l.Records {
		if r.Name == name {
			l.Records[i].LastRefreshed = at
			return
		}
	}
}

// Signature is a stable string capturing both membership and insertion
// order, used by Cache.Expired to detect a changed bucket set without
// waiting for TTL expiry.
func (l *List) Signature() string {
	names := make([]string, len(l.Records))
	for i, r := range l.Records {
		names[i] = r.Name + "=" + r.URL
	}
	return strings.Join(names, ";")
}
