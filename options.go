package buildcache

import (
	"github.com/spf13/afero"
)

// WithFs sets a custom filesystem for the cache.
// This is primarily useful for testing with in-memory filesystems.
//
// Example:
//
//	cache, err := buildcache.Open(".cache", buildcache.WithFs(afero.NewMemMapFs()))
func WithFs(fs afero.Fs) Option {
	return func(c *Cache) {
		c.fs = fs
	}
}

// WithHashFunc sets a custom hash function for the cache.
// The default is SHA-1. A fast non-cryptographic hash such as xxHash64 can
// be substituted when collision resistance against adversarial inputs is
// not a concern.
//
// Note: Changing the hash function invalidates existing cache entries.
func WithHashFunc(hashFunc HashFunc) Option {
	return func(c *Cache) {
		c.hashFunc = hashFunc
	}
}

// WithVersion sets the cache format version, which becomes part of the
// on-disk root. Entries written under other versions are never seen.
func WithVersion(version int) Option {
	return func(c *Cache) {
		c.version = version
	}
}
