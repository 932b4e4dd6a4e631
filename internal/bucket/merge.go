package bucket

// Merge combines manifests in bucket insertion order: the first bucket to
// define a given package or script name owns the entry (§4.3 "Merge").
// Within a single bucket, packages are merged in manifest declaration
// order, which Go's range-over-slice already preserves.
func Merge(order []string, manifests map[string]Manifest) *Cache {
	c := NewCache()
	for _, bucketName := range order {
		m, ok := manifests[bucketName]
		if !ok {
			continue
		}
		for _, pkg := range m.Packages {
			if _, exists := c.Packages[pkg.Name]; exists {
				continue
			}
			c.Packages[pkg.Name] = OwnedPackage{SourceBucket: bucketName, Entry: pkg}
		}
		for _, sc := range m.Scripts {
			if _, exists := c.Scripts[sc.Name]; exists {
				continue
			}
			c.Scripts[sc.Name] = OwnedScript{SourceBucket: bucketName, Entry: sc}
		}
	}
	return c
}
