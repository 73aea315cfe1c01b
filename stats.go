package buildcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Stats summarizes the contents of the cache root.
type Stats struct {
	Entries   int   // Number of cache entries (digest markers)
	TotalSize int64 // Total size of all cached artifacts in bytes
}

// Entry describes a single cache entry for iteration.
type Entry struct {
	ID        string // Unit id, i.e. the entry path relative to the root
	Digest    string // Recorded fingerprint
	Size      int64  // Total size of the entry's artifacts in bytes
	FileCount int    // Number of artifact files in the entry
}

// Stats returns statistics about the cache.
func (c *Cache) Stats() (Stats, error) {
	stats := Stats{}

	err := c.walkMarkers(func(entry Entry) error {
		stats.Entries++
		stats.TotalSize += entry.Size
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// Entries returns every cache entry under the versioned root.
func (c *Cache) Entries() ([]Entry, error) {
	var entries []Entry

	err := c.walkMarkers(func(entry Entry) error {
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// walkMarkers walks all digest markers under the root and calls fn with the
// entry each one describes. An entry whose artifact directory is missing
// (for example after a failed update) is reported with zero size.
func (c *Cache) walkMarkers(fn func(entry Entry) error) error {
	return afero.Walk(c.fs, c.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".hash") {
			return nil
		}

		digest, err := afero.ReadFile(c.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read digest marker %s: %w", path, err)
		}

		entryDir := strings.TrimSuffix(path, ".hash")
		id, err := filepath.Rel(c.root, entryDir)
		if err != nil {
			return err
		}

		size, count := c.dirSize(entryDir)
		return fn(Entry{
			ID:        id,
			Digest:    strings.TrimSpace(string(digest)),
			Size:      size,
			FileCount: count,
		})
	})
}

// dirSize totals the size and count of all files under dir.
// A missing directory counts as empty.
func (c *Cache) dirSize(dir string) (int64, int) {
	var size int64
	var count int

	_ = afero.Walk(c.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		size += info.Size()
		count++
		return nil
	})

	return size, count
}
