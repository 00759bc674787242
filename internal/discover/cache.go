// ABOUTME: On-disk discovery cache keyed by absolute source path + mtime
// ABOUTME: Avoids re-probing unchanged sources between encoder runs
package discover

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// entry is one cached probe result, invalidated per-entry by mtime.
type entry struct {
	ModTime time.Time `json:"mtime"`
	Info    Info      `json:"info"`
}

// Cache is a (absolute source path -> last probe) map persisted under
// {outdir}/.cache/discovery.json between encoder runs.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]entry
}

// OpenCache loads the cache file at path if it exists, or starts empty.
// A corrupt cache file is treated as empty rather than failing the run,
// since discovery can always fall back to reprobing.
func OpenCache(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var entries map[string]entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return c
	}
	c.entries = entries
	return c
}

// Lookup returns the cached Info for absPath if present and not stale
// relative to modTime.
func (c *Cache) Lookup(absPath string, modTime time.Time) (Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[absPath]
	if !ok || !e.ModTime.Equal(modTime) {
		return Info{}, false
	}
	return e.Info, true
}

// Put records info for absPath at modTime.
func (c *Cache) Put(absPath string, modTime time.Time, info Info) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[absPath] = entry{ModTime: modTime, Info: info}
}

// Save writes the cache to disk atomically (write-temp-then-rename),
// creating its parent directory if necessary.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(c.entries)
	if err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// ProbeCached probes path, consulting and updating cache when use is
// true. With use false, it always probes and still records the result
// so a later run with caching re-enabled benefits immediately.
func ProbeCached(cache *Cache, path string, use bool) (Info, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Info{}, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}

	if use {
		if info, ok := cache.Lookup(abs, stat.ModTime()); ok {
			return info, nil
		}
	}

	info, err := Probe(path)
	if err != nil {
		return Info{}, err
	}
	cache.Put(abs, stat.ModTime(), info)
	return info, nil
}
