package buildcache

import (
	"testing"
)

func TestStatsEmptyCache(t *testing.T) {
	cache, _ := setupTestCache(t, "/cache")

	stats, err := cache.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 0 || stats.TotalSize != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}

func TestStatsAndEntries(t *testing.T) {
	cache, memFs := setupTestCache(t, "/cache")

	createTestFile(t, memFs, "/src/a.txt", []byte("a"))
	createTestFile(t, memFs, "/src/b.txt", []byte("b"))

	keyA, err := cache.KeyFor("libA", []string{"/src/a.txt"})
	if err != nil {
		t.Fatalf("KeyFor failed: %v", err)
	}
	keyB, err := cache.KeyFor("libB", []string{"/src/b.txt"})
	if err != nil {
		t.Fatalf("KeyFor failed: %v", err)
	}

	createTestFile(t, memFs, "/build/a.bin", []byte("AAAA"))     // 4 bytes
	createTestFile(t, memFs, "/build/b1.bin", []byte("BB"))      // 2 bytes
	createTestFile(t, memFs, "/build/b2.bin", []byte("BBBBBB")) // 6 bytes

	if err := cache.Update(keyA, []string{"/build/a.bin"}, ""); err != nil {
		t.Fatalf("Update A failed: %v", err)
	}
	if err := cache.Update(keyB, []string{"/build/b1.bin", "/build/b2.bin"}, ""); err != nil {
		t.Fatalf("Update B failed: %v", err)
	}

	stats, err := cache.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Stats.Entries = %d, want 2", stats.Entries)
	}
	if stats.TotalSize != 12 {
		t.Errorf("Stats.TotalSize = %d, want 12", stats.TotalSize)
	}

	entries, err := cache.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Entries returned %d entries, want 2", len(entries))
	}

	byID := make(map[string]Entry)
	for _, e := range entries {
		byID[e.ID] = e
	}

	a, ok := byID["libA"]
	if !ok {
		t.Fatalf("Missing entry libA in %v", entries)
	}
	if a.Digest != keyA.Digest {
		t.Errorf("libA digest = %q, want %q", a.Digest, keyA.Digest)
	}
	if a.Size != 4 || a.FileCount != 1 {
		t.Errorf("libA size/count = %d/%d, want 4/1", a.Size, a.FileCount)
	}

	b, ok := byID["libB"]
	if !ok {
		t.Fatalf("Missing entry libB in %v", entries)
	}
	if b.Size != 8 || b.FileCount != 2 {
		t.Errorf("libB size/count = %d/%d, want 8/2", b.Size, b.FileCount)
	}
}

func TestStatsAfterInvalidate(t *testing.T) {
	cache, memFs := setupTestCache(t, "/cache")

	createTestFile(t, memFs, "/src/a.txt", []byte("a"))
	key, err := cache.KeyFor("libA", []string{"/src/a.txt"})
	if err != nil {
		t.Fatalf("KeyFor failed: %v", err)
	}

	createTestFile(t, memFs, "/build/a.bin", []byte("AAAA"))
	if err := cache.Update(key, []string{"/build/a.bin"}, ""); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := cache.Invalidate(key); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	stats, err := cache.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Stats.Entries = %d after invalidate, want 0", stats.Entries)
	}
}
