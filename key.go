package buildcache

import (
	"fmt"
	"hash"
	"path/filepath"
	"sort"
)

// CacheKey identifies one cache entry: the sorted source paths that
// contribute to the fingerprint, the resulting digest, and the entry
// location under the cache root.
//
// Keys are plain values; constructing one never touches the entry on disk.
type CacheKey struct {
	// Sources is the ordered list of absolute paths the digest covers.
	Sources []string

	// Digest is the lowercase hex fingerprint of Sources' relative names
	// and contents, plus any extra fingerprint data.
	Digest string

	// Path is the entry directory for this key under the cache root.
	Path string
}

// ExtraFingerprint mixes additional bytes into a fingerprint before it is
// finalized, letting a key capture non-file inputs such as build flags or
// tool versions.
type ExtraFingerprint func(h hash.Hash) error

// KeyFor returns a cache key for the given id and source paths.
// The paths are sorted before hashing, so callers may pass them in any
// order.
func (c *Cache) KeyFor(id string, sources []string) (CacheKey, error) {
	sorted := append([]string(nil), sources...)
	sort.Strings(sorted)

	digest, err := c.fingerprint(sorted, nil)
	if err != nil {
		return CacheKey{}, err
	}
	return c.keyFor(id, digest, sorted), nil
}

// KeyForUnit returns a cache key for the given unit of work.
//
// selector picks which of the unit's files contribute to the fingerprint;
// nil defaults to OwnSources. extra, if non-nil, mixes additional bytes into
// the fingerprint and may be the key's only input when the selector does not
// apply to the unit. A unit with neither an applicable selector nor an extra
// fingerprint has nothing to fingerprint and yields ErrInvalidKeyRequest.
func (c *Cache) KeyForUnit(unit Unit, selector SourceSelector, extra ExtraFingerprint) (CacheKey, error) {
	if selector == nil {
		selector = OwnSources
	}
	if !selector.Applicable(unit) {
		if extra == nil {
			return CacheKey{}, fmt.Errorf("unit %s: %w", unit.ID(), ErrInvalidKeyRequest)
		}
		selector = NoSources
	}

	sources, err := selector.Select(unit)
	if err != nil {
		return CacheKey{}, fmt.Errorf("failed to select sources for %s: %w", unit.ID(), err)
	}
	sorted := append([]string(nil), sources...)
	sort.Strings(sorted)

	digest, err := c.fingerprint(sorted, extra)
	if err != nil {
		return CacheKey{}, err
	}
	return c.keyFor(unit.ID(), digest, sorted), nil
}

// keyFor assembles the immutable key value for an id and digest.
func (c *Cache) keyFor(id, digest string, sources []string) CacheKey {
	return CacheKey{
		Sources: sources,
		Digest:  digest,
		Path:    filepath.Join(c.root, id),
	}
}
