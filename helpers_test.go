package buildcache

import (
	"hash"
	"testing"

	"github.com/spf13/afero"
)

// setupTestCache opens a cache on an in-memory filesystem.
func setupTestCache(t *testing.T, base string, options ...Option) (*Cache, afero.Fs) {
	t.Helper()
	memFs := afero.NewMemMapFs()
	cache, err := Open(base, append([]Option{WithFs(memFs)}, options...)...)
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	return cache, memFs
}

func createTestFile(t *testing.T, fs afero.Fs, path string, content []byte) {
	t.Helper()
	if err := afero.WriteFile(fs, path, content, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func assertFileContent(t *testing.T, fs afero.Fs, path string, want []byte) {
	t.Helper()
	got, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	if string(got) != string(want) {
		t.Errorf("Unexpected content in %s: got %q, want %q", path, got, want)
	}
}

func assertAbsent(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("Failed to check %s: %v", path, err)
	}
	if exists {
		t.Errorf("Expected %s to be absent, but it exists", path)
	}
}

func assertNeedsUpdate(t *testing.T, cache *Cache, key CacheKey, want bool, context string) {
	t.Helper()
	got, err := cache.NeedsUpdate(key)
	if err != nil {
		t.Fatalf("NeedsUpdate failed (%s): %v", context, err)
	}
	if got != want {
		t.Errorf("NeedsUpdate = %v, want %v (%s)", got, want, context)
	}
}

// fixedExtra returns an ExtraFingerprint that mixes a fixed string.
func fixedExtra(value string) ExtraFingerprint {
	return func(h hash.Hash) error {
		_, err := h.Write([]byte(value))
		return err
	}
}

// testUnit is a unit of work with the file-expansion capability.
type testUnit struct {
	id   string
	own  []string
	deps []*testUnit
}

func (u *testUnit) ID() string { return u.id }

func (u *testUnit) ExpandFiles(recursive bool) ([]string, error) {
	files := append([]string(nil), u.own...)
	if recursive {
		for _, dep := range u.deps {
			depFiles, err := dep.ExpandFiles(true)
			if err != nil {
				return nil, err
			}
			files = append(files, depFiles...)
		}
	}
	return files, nil
}

// bareUnit has an id but no way to enumerate files.
type bareUnit struct {
	id string
}

func (u bareUnit) ID() string { return u.id }
