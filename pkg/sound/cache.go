// ABOUTME: Single-flighted buffer cache with placeholder in-place fill
// ABOUTME: Keyed by file_name; dedupes concurrent decodes via golang.org/x/sync/singleflight
package sound

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/jadujoel/scode/pkg/atlas"
	"github.com/jadujoel/scode/pkg/audio"
)

// BufferCache decodes and caches playback buffers keyed by file_name.
// Concurrent requests for the same file share one decode (single-flight);
// a synchronous request that arrives before a decode completes gets a
// silent placeholder buffer that is filled in place once the decode
// finishes. All exported methods are safe for concurrent use.
type BufferCache struct {
	sampleRate int
	ext        string

	fetcher Fetcher
	decoder *Decoder
	bus     *eventBus

	// Debugf logs a ticket-correlated debug line, wired by Manager to the
	// leveled logger. Defaults to a no-op so the cache stays usable
	// standalone.
	Debugf func(format string, args ...any)

	mu         sync.Mutex
	loadPath   string
	buffers    map[string]*audio.Buffer
	pending    map[string]chan struct{}
	priorities map[string]int
	disposed   bool

	group singleflight.Group
}

// NewBufferCache constructs a cache fetching from loadPath with encoded
// files carrying ext (e.g. ".webm") and allocating placeholder buffers
// at sampleRate (the owning audio context's rate).
func NewBufferCache(loadPath, ext string, sampleRate int, fetcher Fetcher, decoder *Decoder, bus *eventBus) *BufferCache {
	return &BufferCache{
		sampleRate: sampleRate,
		ext:        ext,
		loadPath:   loadPath,
		fetcher:    fetcher,
		decoder:    decoder,
		bus:        bus,
		Debugf:     func(string, ...any) {},
		buffers:    make(map[string]*audio.Buffer),
		pending:    make(map[string]chan struct{}),
		priorities: make(map[string]int),
	}
}

// SetLoadPath updates the base path future fetches are relative to. It
// does not affect buffers already cached.
func (c *BufferCache) SetLoadPath(loadPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadPath = loadPath
}

// SetPriorities configures the ordered list of source names that bulk
// loads should load first.
func (c *BufferCache) SetPriorities(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.priorities = make(map[string]int, len(names))
	for i, n := range names {
		c.priorities[n] = i
	}
}

// RequestAsync resolves item to its decoded buffer, single-flighting
// concurrent requests for the same file_name. It returns nil on fetch or
// decode failure, after emitting SoundLoadError and caching a null
// buffer for item.FileName (unless a placeholder is already cached for
// it, which is kept silent); no error value crosses this boundary, per
// the decoder's "null on failure" contract. A cached failure is not
// retried automatically — a later request for the same file_name
// returns the cached nil immediately — until Invalidate clears it.
func (c *BufferCache) RequestAsync(ctx context.Context, item atlas.Item) *audio.Buffer {
	c.mu.Lock()
	disposed := c.disposed
	cached, hasCached := c.buffers[item.FileName]
	c.mu.Unlock()
	if disposed || (hasCached && cached == nil) {
		return nil
	}

	result, _, _ := c.group.Do(item.FileName, func() (any, error) {
		ticket := uuid.New()
		done := c.beginPending(item.FileName)
		defer close(done)

		c.Debugf("decode ticket %s: fetching %s", ticket, item.FileName)
		buf, err := c.decodeFile(ctx, item)
		if err != nil {
			c.installFailure(item.FileName)
			c.endPending(item.FileName)
			c.Debugf("decode ticket %s: failed: %v", ticket, err)
			c.bus.emit(Event{Kind: SoundLoadError, FileName: item.FileName})
			return nil, err
		}

		c.installBuffer(item.FileName, buf)
		c.mu.Lock()
		installed, ok := c.buffers[item.FileName]
		c.mu.Unlock()
		if !ok {
			// disposed between installBuffer and this read; nothing was
			// kept, so the ticket's own decode is the best we can return.
			installed = buf
		}
		c.endPending(item.FileName)
		c.Debugf("decode ticket %s: installed %s", ticket, item.FileName)
		c.bus.emit(Event{Kind: SoundLoaded, FileName: item.FileName})
		return installed, nil
	})

	if result == nil {
		return nil
	}
	return result.(*audio.Buffer)
}

// RequestSync returns the cached buffer for item if one already exists,
// including a cached nil from a prior decode failure (returned as-is,
// without retrying). Otherwise it installs a silent placeholder of the
// item's shape, returns it immediately, and kicks off the async decode
// in the background.
func (c *BufferCache) RequestSync(ctx context.Context, item atlas.Item) *audio.Buffer {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	if existing, ok := c.buffers[item.FileName]; ok {
		c.mu.Unlock()
		return existing
	}
	placeholder := audio.NewSilentBuffer(item.Channels, item.SampleCount, c.sampleRate)
	c.buffers[item.FileName] = placeholder
	c.mu.Unlock()

	go c.RequestAsync(ctx, item)

	return placeholder
}

// LoadFile triggers (and waits for) a decode of item.
func (c *BufferCache) LoadFile(ctx context.Context, item atlas.Item) {
	c.RequestAsync(ctx, item)
}

// LoadItems loads each item, priority-ordered items first (stable sort
// by priority rank; everything else keeps its relative order after
// them).
func (c *BufferCache) LoadItems(ctx context.Context, items []atlas.Item) {
	for _, item := range c.orderByPriority(items) {
		c.LoadFile(ctx, item)
	}
}

func (c *BufferCache) orderByPriority(items []atlas.Item) []atlas.Item {
	c.mu.Lock()
	priorities := c.priorities
	c.mu.Unlock()

	out := make([]atlas.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		ri, oki := priorities[out[i].SourceName]
		rj, okj := priorities[out[j].SourceName]
		switch {
		case oki && okj:
			return ri < rj
		case oki:
			return true
		default:
			return false
		}
	})
	return out
}

func (c *BufferCache) decodeFile(ctx context.Context, item atlas.Item) (*audio.Buffer, error) {
	c.mu.Lock()
	loadPath := c.loadPath
	c.mu.Unlock()

	data, err := c.fetcher.Fetch(ctx, loadPath, item.FileName, c.ext)
	if err != nil {
		return nil, err
	}

	channels := item.Channels
	if channels == 0 {
		channels = 1
	}

	samples, err := c.decoder.Decode(ctx, data, channels, c.sampleRate)
	if err != nil {
		return nil, err
	}

	// sample_count stays the atlas-authoritative value, not the decoded
	// frame count, so scheduling computations done against the atlas
	// remain exact even when a decoder reports a slightly different
	// length than the PCM source had.
	return &audio.Buffer{
		Channels:    channels,
		SampleCount: item.SampleCount,
		SampleRate:  c.sampleRate,
		Samples:     samples,
		Format:      audio.Format{Codec: "pcm", SampleRate: c.sampleRate, Channels: channels, BitDepth: 16},
	}, nil
}

// installBuffer writes buf into the cache under fileName, filling an
// existing placeholder in place rather than replacing its identity, so
// callers holding the earlier buffer reference observe the same object
// transition from silent to decoded. It is a no-op once disposed, so a
// decode that resolves after dispose cannot resurrect a removed entry.
func (c *BufferCache) installBuffer(fileName string, buf *audio.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	if existing, ok := c.buffers[fileName]; ok && existing != buf {
		existing.FillInPlace(buf)
		return
	}
	c.buffers[fileName] = buf
}

// installFailure caches a nil buffer for fileName after a decode
// failure. A placeholder already installed for it is kept (it stays
// silent) rather than replaced with nil. It is a no-op once disposed,
// matching installBuffer.
func (c *BufferCache) installFailure(fileName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	if existing, ok := c.buffers[fileName]; ok && existing != nil {
		return
	}
	c.buffers[fileName] = nil
}

// Invalidate clears any cached result (buffer or failure) for fileName,
// so the next request re-attempts the fetch and decode instead of
// returning a stale cached nil.
func (c *BufferCache) Invalidate(fileName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.buffers, fileName)
}

func (c *BufferCache) beginPending(fileName string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	done := make(chan struct{})
	c.pending[fileName] = done
	return done
}

func (c *BufferCache) endPending(fileName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, fileName)
}

// Dispose awaits every in-flight ticket before clearing the cache, so a
// decode that resolves after dispose cannot resurrect a removed entry
// (installBuffer checks disposed under the same lock once awaited).
func (c *BufferCache) Dispose() {
	c.mu.Lock()
	c.disposed = true
	pending := make([]chan struct{}, 0, len(c.pending))
	for _, done := range c.pending {
		pending = append(pending, done)
	}
	c.mu.Unlock()

	for _, done := range pending {
		<-done
	}

	c.mu.Lock()
	c.buffers = make(map[string]*audio.Buffer)
	c.pending = make(map[string]chan struct{})
	c.mu.Unlock()
}

// Resume clears the disposed flag, allowing a reloaded manager to reuse
// this cache instance.
func (c *BufferCache) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = false
}

// Len reports the number of cached buffers, for tests and diagnostics.
func (c *BufferCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffers)
}
