package buildcache

import (
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// Version is the cache format version. It is part of the on-disk root
// (<base>/<version>), so bumping it orphans all prior entries instead of
// colliding with them.
const Version = 0

// Cache caches build artifacts on disk and invalidates them based on a
// digest of their contributing source files.
//
// A Cache performs no locking of its own. Concurrent updates to the same
// unit id from different goroutines or processes race on the digest marker;
// callers must serialize access per unit id.
type Cache struct {
	root     string
	version  int
	hashFunc HashFunc
	fs       afero.Fs
}

// HashFunc defines a function that creates a new hash.Hash instance.
type HashFunc func() hash.Hash

// Option defines a function that configures a Cache.
type Option func(*Cache)

// InstallFunc places one cached file into the caller's build area, typically
// by hardlinking or copying. cachedPath is the absolute path of the file
// inside the cache entry; relPath is its path relative to the entry root.
type InstallFunc func(cachedPath, relPath string) error

// Open creates a cache rooted at <base>/<version>.
// The versioned root directory is created if it doesn't exist.
func Open(base string, options ...Option) (*Cache, error) {
	cache := &Cache{
		version:  Version,
		fs:       afero.NewOsFs(),
		hashFunc: defaultHashFunc,
	}

	for _, option := range options {
		option(cache)
	}

	cache.root = filepath.Join(base, strconv.Itoa(cache.version))
	if err := cache.fs.MkdirAll(cache.root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}

	return cache, nil
}

// Root returns the versioned root directory of the cache.
func (c *Cache) Root() string {
	return c.root
}

// NeedsUpdate reports whether the entry for key is absent or stale.
// It compares key's digest against the persisted marker; a missing marker
// means the entry was never built (or was invalidated) and yields true.
// Any other marker read failure is returned as-is.
func (c *Cache) NeedsUpdate(key CacheKey) (bool, error) {
	stored, err := c.readMarker(key)
	if err != nil {
		return false, fmt.Errorf("failed to read digest marker: %w", err)
	}
	return stored != key.Digest, nil
}

// Invalidate removes the entry directory and digest marker for key.
// Paths that are already absent are treated as success, so Invalidate is
// idempotent; any other removal failure is returned.
func (c *Cache) Invalidate(key CacheKey) error {
	if err := c.fs.RemoveAll(key.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove entry %s: %w", key.Path, err)
	}
	if err := c.fs.Remove(c.markerPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove digest marker: %w", err)
	}
	return nil
}

// Update replaces the cache entry for key with the given artifacts and
// records key's digest.
//
// The existing entry directory is deleted first; there is no partial merge.
// Each artifact is staged under the entry directory at its path relative to
// artifactRoot, or at its base name if artifactRoot is empty. Directory
// artifacts are copied recursively. An artifact whose relative path would
// escape the entry directory aborts the update with a *TraversalError.
//
// The marker is written only after every artifact is staged. A failed Update
// can leave a partially populated entry with no marker, which reads as
// absent on the next NeedsUpdate check, never as falsely fresh.
func (c *Cache) Update(key CacheKey, artifacts []string, artifactRoot string) error {
	if err := c.fs.RemoveAll(key.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stale entry %s: %w", key.Path, err)
	}

	for _, artifact := range artifacts {
		rel, err := c.entryRelPath(artifact, artifactRoot)
		if err != nil {
			return err
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return &TraversalError{Artifact: artifact, Rel: rel}
		}

		dest := filepath.Join(key.Path, rel)
		if err := c.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create entry directory: %w", err)
		}

		isDir, err := afero.IsDir(c.fs, artifact)
		if err != nil {
			return fmt.Errorf("failed to stat artifact %s: %w", artifact, err)
		}
		if isDir {
			err = c.copyTree(artifact, dest)
		} else {
			err = c.copyFile(artifact, dest)
		}
		if err != nil {
			return fmt.Errorf("failed to stage artifact %s: %w", artifact, err)
		}
	}

	if err := c.writeMarker(key); err != nil {
		return fmt.Errorf("failed to write digest marker: %w", err)
	}
	return nil
}

// Retrieve walks the cache entry for key in sorted order and invokes install
// for every cached file. The caller decides how files enter the active build
// area (hardlink, copy, symlink). Retrieve never mutates the entry; install
// errors propagate unchanged.
func (c *Cache) Retrieve(key CacheKey, install InstallFunc) error {
	return c.walkPaths([]string{key.Path}, func(rel, abs string) error {
		return install(abs, rel)
	})
}

// entryRelPath computes the destination of artifact relative to the entry
// directory.
func (c *Cache) entryRelPath(artifact, artifactRoot string) (string, error) {
	if artifactRoot == "" {
		return filepath.Base(artifact), nil
	}
	rel, err := filepath.Rel(artifactRoot, artifact)
	if err != nil {
		return "", fmt.Errorf("failed to resolve artifact %s against root %s: %w", artifact, artifactRoot, err)
	}
	return rel, nil
}

// markerPath returns the path of the digest marker file for key.
func (c *Cache) markerPath(key CacheKey) string {
	return key.Path + ".hash"
}

// readMarker returns the digest recorded for key, or "" if no marker exists.
func (c *Cache) readMarker(key CacheKey) (string, error) {
	data, err := afero.ReadFile(c.fs, c.markerPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// writeMarker records key's digest as the last-known-good fingerprint.
func (c *Cache) writeMarker(key CacheKey) error {
	return afero.WriteFile(c.fs, c.markerPath(key), []byte(key.Digest), 0o644)
}

// copyFile copies a file from src to dst using the cache's filesystem.
func (c *Cache) copyFile(src, dst string) error {
	srcFile, err := c.fs.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := c.fs.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	bufPtr := bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer bufferPool.Put(bufPtr)

	_, err = io.CopyBuffer(dstFile, srcFile, buffer)
	return err
}

// copyTree recursively copies the directory src to dst.
func (c *Cache) copyTree(src, dst string) error {
	return afero.Walk(c.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return c.fs.MkdirAll(target, 0o755)
		}
		return c.copyFile(path, target)
	})
}

// newHash creates a new hash instance.
func (c *Cache) newHash() hash.Hash {
	return c.hashFunc()
}
