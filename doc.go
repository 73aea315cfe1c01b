/*
Package buildcache provides a content-addressed cache for build artifacts.

Given a unit of work identified by a stable id and the set of source files
that feed it, buildcache computes a deterministic fingerprint, decides
whether previously produced artifacts for that fingerprint are still valid,
and makes them available without recomputation. It lets a build pipeline
skip redundant work safely.

# Core Architecture

The cache owns a versioned root directory (<base>/<version>). Each unit id
maps to one entry under the root:

	.cache/
	└── 0/
	    ├── libfoo/          entry directory with staged artifacts
	    └── libfoo.hash      digest marker, the last-known-good fingerprint

Staleness is decided solely by comparing the freshly computed fingerprint to
the marker's stored value, never by mtimes or file existence. The marker is
written only after all artifacts are staged, so a failed update reads as
absent on the next check rather than falsely fresh.

# Fingerprinting

Source paths are hashed in sorted order; directories are walked recursively,
also sorted. For every file the fingerprint covers its name relative to the
input path and its raw content, so both edits and renames change the digest,
and the result is reproducible across machines for identical content. A
missing or unreadable source fails the computation instead of being skipped.

# Basic Usage

Opening a cache and building a key:

	cache, err := buildcache.Open(".cache")
	if err != nil {
	    log.Fatalf("Failed to open cache: %v", err)
	}

	key, err := cache.KeyForUnit(target, buildcache.OwnSources, nil)
	if err != nil {
	    log.Fatalf("Failed to build key: %v", err)
	}

Checking, rebuilding and retrieving:

	stale, err := cache.NeedsUpdate(key)
	if err != nil {
	    log.Fatalf("Cache check failed: %v", err)
	}

	if stale {
	    artifacts := runBuild(target)
	    if err := cache.Update(key, artifacts, outDir); err != nil {
	        log.Fatalf("Failed to cache artifacts: %v", err)
	    }
	} else {
	    err := cache.Retrieve(key, func(cached, rel string) error {
	        return os.Link(cached, filepath.Join(buildDir, rel))
	    })
	    if err != nil {
	        log.Fatalf("Failed to install cached artifacts: %v", err)
	    }
	}

# Source Selectors

A SourceSelector decides which of a unit's files contribute to the
fingerprint. Three canonical selectors are provided:

	buildcache.NoSources          nothing; pair with an extra fingerprint
	buildcache.OwnSources         the unit's own files (non-recursive)
	buildcache.TransitiveSources  own files plus all dependencies' files

Units expose their files through the FileExpander capability. A selector
that needs that capability rejects units lacking it; asking for a key with
an inapplicable selector and no extra fingerprint fails with
ErrInvalidKeyRequest.

Non-file inputs such as compiler flags are captured with an
ExtraFingerprint:

	key, err := cache.KeyForUnit(target, buildcache.TransitiveSources,
	    func(h hash.Hash) error {
	        _, err := h.Write([]byte(compilerFlags))
	        return err
	    })

# Configuration Options

	cache, err := buildcache.Open(
	    ".cache",
	    buildcache.WithFs(afero.NewMemMapFs()),
	    buildcache.WithHashFunc(func() hash.Hash { return xxhash.New() }),
	    buildcache.WithVersion(1),
	)

The default hash is SHA-1. Bumping the version gives the store a fresh root,
invalidating all prior entries by construction.

# Concurrency

All operations are synchronous and block until complete. The cache performs
no cross-process or cross-goroutine locking: concurrent updates to the same
unit id race on the digest marker. Callers must serialize access per unit
id, typically by letting one build executor own an id at a time. Distinct
ids never interfere; every mutation is scoped to a single entry's subtree.

# Error Handling

  - ErrInvalidKeyRequest: the key had no fingerprintable basis
  - *TraversalError: an artifact's destination would escape its entry
  - anything else is a wrapped filesystem error

Delete-style operations treat "already absent" as success; every other
failure is surfaced, never swallowed. Ambiguity always resolves toward
stale (forcing a rebuild), never toward a wrong-but-plausible cache hit.
*/
package buildcache
