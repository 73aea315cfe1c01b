package buildcache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

// Default size for the buffer used when hashing and copying files
const defaultBufferSize = 32 * 1024 // 32KB

// bufferPool is a pool of byte slices used for file I/O
var bufferPool = sync.Pool{
	New: func() interface{} {
		buffer := make([]byte, defaultBufferSize)
		return &buffer
	},
}

// fingerprint computes the digest for the given source paths.
//
// Paths are visited in sorted order; directories are walked recursively,
// also sorted, so the digest never depends on filesystem iteration order.
// For every file the path relative to its original input path is fed into
// the accumulator before the file's content, so two layouts with identical
// concatenated bytes but different names still hash apart. A path that is
// missing or unreadable fails the whole computation; silently skipping it
// would change what the digest means.
func (c *Cache) fingerprint(paths []string, extra ExtraFingerprint) (string, error) {
	h := c.newHash()

	err := c.walkPaths(paths, func(rel, abs string) error {
		h.Write([]byte(rel))
		return c.hashContent(abs, h)
	})
	if err != nil {
		return "", err
	}

	if extra != nil {
		if err := extra(h); err != nil {
			return "", fmt.Errorf("failed to apply extra fingerprint: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// walkPaths visits every file reachable under the given paths in sorted
// order and calls fn with the file's path relative to its input path and its
// absolute path. Plain-file inputs are reported under their base name.
func (c *Cache) walkPaths(paths []string, fn func(rel, abs string) error) error {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	for _, path := range sorted {
		isDir, err := afero.IsDir(c.fs, path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !isDir {
			if err := fn(filepath.Base(path), path); err != nil {
				return err
			}
			continue
		}

		err = afero.Walk(c.fs, path, func(sub string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(path, sub)
			if err != nil {
				return err
			}
			return fn(rel, sub)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// hashContent feeds the content of the file at path into h.
func (c *Cache) hashContent(path string, h hash.Hash) error {
	file, err := c.fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return hashReader(file, h)
}

// hashReader hashes the content from a reader using the provided hash.
func hashReader(content io.Reader, h hash.Hash) error {
	bufPtr := bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer bufferPool.Put(bufPtr)

	_, err := io.CopyBuffer(h, content, buffer)
	if err != nil {
		return fmt.Errorf("failed to copy content: %w", err)
	}
	return nil
}

// defaultHashFunc returns the default hash function (SHA-1).
func defaultHashFunc() hash.Hash {
	return sha1.New()
}
