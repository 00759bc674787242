// ABOUTME: Tests for the on-disk discovery cache
package discover

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCachePutLookupRoundTrips(t *testing.T) {
	c := OpenCache(filepath.Join(t.TempDir(), "discovery.json"))
	mtime := time.Now().Truncate(time.Second)
	info := Info{SampleRate: 48000, Channels: 2, BitDepth: 16}

	c.Put("/abs/path/a.wav", mtime, info)

	got, ok := c.Lookup("/abs/path/a.wav", mtime)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got != info {
		t.Fatalf("expected %+v, got %+v", info, got)
	}
}

func TestCacheLookupMissesOnStaleModTime(t *testing.T) {
	c := OpenCache(filepath.Join(t.TempDir(), "discovery.json"))
	mtime := time.Now().Truncate(time.Second)
	c.Put("/abs/path/a.wav", mtime, Info{SampleRate: 48000})

	_, ok := c.Lookup("/abs/path/a.wav", mtime.Add(time.Second))
	if ok {
		t.Fatal("expected a cache miss for a changed mtime")
	}
}

func TestCacheSaveAndReopenRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discovery.json")
	mtime := time.Now().Truncate(time.Second)

	c := OpenCache(path)
	c.Put("/abs/path/a.wav", mtime, Info{SampleRate: 48000, Channels: 1})
	if err := c.Save(); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	reopened := OpenCache(path)
	got, ok := reopened.Lookup("/abs/path/a.wav", mtime)
	if !ok {
		t.Fatal("expected the reopened cache to retain the saved entry")
	}
	if got.SampleRate != 48000 || got.Channels != 1 {
		t.Fatalf("unexpected entry after reopen: %+v", got)
	}
}

func TestOpenCacheMissingFileStartsEmpty(t *testing.T) {
	c := OpenCache(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if _, ok := c.Lookup("anything", time.Now()); ok {
		t.Fatal("expected an empty cache for a missing file")
	}
}

func TestProbeCachedSkipsReprobeWhenUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wav")
	if err := os.WriteFile(path, []byte("not a real wav"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cachePath := filepath.Join(dir, ".cache", "discovery.json")
	cache := OpenCache(cachePath)

	stat, err := os.Stat(path)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	abs, _ := filepath.Abs(path)
	cache.Put(abs, stat.ModTime(), Info{SampleRate: 48000, Channels: 2, BitDepth: 16})

	info, err := ProbeCached(cache, path, true)
	if err != nil {
		t.Fatalf("expected the cache hit to short-circuit probing, got error: %v", err)
	}
	if info.SampleRate != 48000 {
		t.Fatalf("expected the cached info, got %+v", info)
	}
}
