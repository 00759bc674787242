// ABOUTME: Public facade: selection, enumeration, buffer requests, lifecycle
// ABOUTME: Owns the atlas, the buffer cache, and the Running/Closing/Disposed state machine
package sound

import (
	"context"
	"sync"

	"github.com/jadujoel/scode/pkg/atlas"
	"github.com/jadujoel/scode/pkg/audio"
	"github.com/jadujoel/scode/pkg/resolve"
)

// Options configures a new Manager.
type Options struct {
	// LoadPath is the base path every encoded file is fetched relative
	// to. Defaults to "./encoded/". It is not used for the atlas: Load
	// takes the atlas document's URL as given.
	LoadPath string
	// Ext is the file extension appended to a resolved file_name before
	// fetching. Defaults to ".webm".
	Ext string
	// SampleRate is the owning audio context's sample rate, used to size
	// placeholder and decoded buffers. Defaults to 48000.
	SampleRate int
	// Fetcher overrides the default HTTP/local-file fetcher.
	Fetcher Fetcher
	// Decoder overrides the default opus-fast-path/media-tool decoder.
	Decoder *Decoder
	// Debugf receives ticket-correlated debug lines from the buffer
	// cache. Defaults to a no-op.
	Debugf func(format string, args ...any)
}

// Manager is the runtime facade: it owns the Atlas, the BufferCache, and
// the current package/language selection, and exposes the
// Running/Closing/Disposed lifecycle that governs all of them.
type Manager struct {
	mu sync.Mutex

	state     State
	atlas     *atlas.Atlas
	pkgName   string
	language  string
	loadPath  string
	ext       string

	bus   *eventBus
	cache *BufferCache
}

// New constructs a Manager in the Running state with an empty atlas and
// no current package/language selection.
func New(opts Options) *Manager {
	if opts.LoadPath == "" {
		opts.LoadPath = "./encoded/"
	}
	if opts.Ext == "" {
		opts.Ext = ".webm"
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = 48000
	}
	if opts.Fetcher == nil {
		opts.Fetcher = NewHTTPFetcher()
	}
	if opts.Decoder == nil {
		opts.Decoder = NewDecoder("")
	}

	bus := newEventBus()
	cache := NewBufferCache(opts.LoadPath, opts.Ext, opts.SampleRate, opts.Fetcher, opts.Decoder, bus)
	if opts.Debugf != nil {
		cache.Debugf = opts.Debugf
	}

	return &Manager{
		state:    Running,
		atlas:    atlas.New(),
		loadPath: opts.LoadPath,
		ext:      opts.Ext,
		bus:      bus,
		cache:    cache,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// AddListener registers h for events of kind and returns a Subscription
// that can remove it.
func (m *Manager) AddListener(kind Kind, h Handler) *Subscription {
	return m.bus.addListener(kind, h)
}

// Load fetches and installs the atlas document at url, emitting
// AtlasLoaded on success. It fails with atlas.ErrFetch or
// atlas.ErrMalformed, leaving the in-memory atlas unchanged.
func (m *Manager) Load(ctx context.Context, loader *atlas.Loader, url string) error {
	if !m.beginMutation() {
		return nil
	}
	a, err := loader.Load(ctx, url)
	if err != nil {
		return err
	}
	m.Replace(a)
	return nil
}

// Replace installs a into the manager and emits AtlasLoaded. It does
// NOT invalidate the buffer cache; correct reload semantics go through
// Reload instead.
func (m *Manager) Replace(a *atlas.Atlas) {
	if !m.beginMutation() {
		return
	}
	m.mu.Lock()
	m.atlas = a
	m.mu.Unlock()
	m.bus.emit(Event{Kind: AtlasLoaded})
}

// SetLoadPath updates the path audio files are fetched relative to, and
// emits LoadPathChanged. It does not affect where Load fetches the atlas.
func (m *Manager) SetLoadPath(path string) {
	if !m.beginMutation() {
		return
	}
	m.mu.Lock()
	m.loadPath = path
	m.mu.Unlock()
	m.cache.SetLoadPath(path)
	m.bus.emit(Event{Kind: LoadPathChanged})
}

// SetPackage switches the current package. It returns false (no-op) if
// name equals the current package or is unknown in the atlas.
func (m *Manager) SetPackage(name string) bool {
	if !m.beginMutation() {
		return false
	}
	m.mu.Lock()
	if name == m.pkgName || !m.atlas.HasPackage(name) {
		m.mu.Unlock()
		return false
	}
	m.pkgName = name
	m.mu.Unlock()
	m.bus.emit(Event{Kind: PackageChanged})
	return true
}

// SetLanguage switches the current language. It returns false (no-op)
// if tag is not among Languages(current package) or equals the current
// language.
func (m *Manager) SetLanguage(tag string) bool {
	if !m.beginMutation() {
		return false
	}
	m.mu.Lock()
	pkg := m.pkgName
	if tag == m.language {
		m.mu.Unlock()
		return false
	}
	m.mu.Unlock()

	ok := false
	for _, l := range m.atlas.Languages(pkg) {
		if l == tag {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}

	m.mu.Lock()
	m.language = tag
	m.mu.Unlock()
	m.bus.emit(Event{Kind: LanguageChanged})
	return true
}

// PackageNames returns all package names, optionally narrowed by
// filter. Order is whatever the atlas happens to hold; callers that
// need a specific order should sort the result themselves.
func (m *Manager) PackageNames(filter func(string) bool) []string {
	if !m.canQuery() {
		return nil
	}
	names := m.snapshotAtlas().Packages()
	if filter == nil {
		return names
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if filter(n) {
			out = append(out, n)
		}
	}
	return out
}

// SourceNames returns source names in pkg (default: current package)
// whose language tag is in languages (default: [current language]). The
// no-language sentinel is not added automatically.
func (m *Manager) SourceNames(pkg string, languages []string) []string {
	if !m.canQuery() {
		return nil
	}
	m.mu.Lock()
	if pkg == "" {
		pkg = m.pkgName
	}
	if languages == nil {
		languages = []string{m.language}
	}
	m.mu.Unlock()
	return m.snapshotAtlas().SourceNames(pkg, languages)
}

// Languages returns the unique language tags in pkg (default: current
// package).
func (m *Manager) Languages(pkg string) []string {
	if !m.canQuery() {
		return nil
	}
	m.mu.Lock()
	if pkg == "" {
		pkg = m.pkgName
	}
	m.mu.Unlock()
	return m.snapshotAtlas().Languages(pkg)
}

// RequestAsync resolves sourceName against the current package and
// language and returns its decoded buffer, or nil on ResolveMiss, fetch
// failure, or decode failure.
func (m *Manager) RequestAsync(ctx context.Context, sourceName string) *audio.Buffer {
	if !m.beginMutation() {
		return nil
	}
	item, ok := m.resolveCurrent(sourceName)
	if !ok {
		return nil
	}
	return m.cache.RequestAsync(ctx, item)
}

// RequestSync resolves sourceName and returns its buffer synchronously:
// the decoded buffer if already cached, otherwise a silent placeholder
// that will be filled in place once a background decode completes. It
// returns nil only if sourceName cannot be resolved at all.
func (m *Manager) RequestSync(ctx context.Context, sourceName string) *audio.Buffer {
	if !m.beginMutation() {
		return nil
	}
	item, ok := m.resolveCurrent(sourceName)
	if !ok {
		return nil
	}
	return m.cache.RequestSync(ctx, item)
}

// Invalidate clears any cached result (buffer or decode failure) for
// sourceName, so a subsequent RequestSync/RequestAsync re-attempts the
// fetch and decode instead of returning the same cached nil forever.
func (m *Manager) Invalidate(sourceName string) {
	if !m.beginMutation() {
		return
	}
	if item, ok := m.resolveCurrent(sourceName); ok {
		m.cache.Invalidate(item.FileName)
	}
}

// LoadFile eagerly decodes the file_name found anywhere in the atlas,
// if any.
func (m *Manager) LoadFile(ctx context.Context, fileName string) {
	if !m.beginMutation() {
		return
	}
	if item, ok := m.findItemByFileName(fileName); ok {
		m.cache.LoadFile(ctx, item)
	}
}

// LoadItems eagerly decodes every item, priority-ordered items first.
func (m *Manager) LoadItems(ctx context.Context, items []atlas.Item) {
	if !m.beginMutation() {
		return
	}
	m.cache.LoadItems(ctx, items)
}

// LoadPackage eagerly decodes every item in pkg.
func (m *Manager) LoadPackage(ctx context.Context, pkg string) {
	if !m.beginMutation() {
		return
	}
	m.cache.LoadItems(ctx, m.snapshotAtlas().Items(pkg))
}

// LoadLanguage eagerly decodes every item across packages whose
// language tag is language or the no-language sentinel.
func (m *Manager) LoadLanguage(ctx context.Context, language string, packages []string) {
	if !m.beginMutation() {
		return
	}
	a := m.snapshotAtlas()
	var items []atlas.Item
	for _, pkg := range packages {
		for _, it := range a.Items(pkg) {
			if it.LanguageTag == language || it.LanguageTag == atlas.NoLanguage {
				items = append(items, it)
			}
		}
	}
	m.cache.LoadItems(ctx, items)
}

// SetPriorities configures which source names bulk loads should load
// first.
func (m *Manager) SetPriorities(names []string) {
	m.cache.SetPriorities(names)
}

// Dispose transitions Running -> Closing -> Disposed: it awaits every
// in-flight decode (eliding their post-resolution cache writes), clears
// the buffer cache, and leaves the manager permanently inert (Reload
// acts only from Running).
func (m *Manager) Dispose() {
	m.mu.Lock()
	if m.state != Running {
		m.mu.Unlock()
		return
	}
	m.state = Closing
	m.mu.Unlock()

	m.cache.Dispose()

	m.mu.Lock()
	m.state = Disposed
	m.mu.Unlock()
}

// Reload disposes the current cache exactly like Dispose, then installs
// newAtlas and re-enters Running, emitting Reloaded exactly once. The
// atlas replacement happens only after the Closing -> Running
// transition completes.
func (m *Manager) Reload(newAtlas *atlas.Atlas) {
	m.mu.Lock()
	if m.state != Running {
		m.mu.Unlock()
		return
	}
	m.state = Closing
	m.mu.Unlock()

	m.cache.Dispose()
	m.cache.Resume()

	m.mu.Lock()
	m.atlas = newAtlas
	m.state = Running
	m.mu.Unlock()

	m.bus.emit(Event{Kind: Reloaded})
}

func (m *Manager) resolveCurrent(sourceName string) (atlas.Item, bool) {
	m.mu.Lock()
	a, pkg, lang := m.atlas, m.pkgName, m.language
	m.mu.Unlock()
	return resolve.Resolve(a, sourceName, pkg, lang)
}

func (m *Manager) findItemByFileName(fileName string) (atlas.Item, bool) {
	a := m.snapshotAtlas()
	for _, pkg := range a.Packages() {
		for _, item := range a.Items(pkg) {
			if item.FileName == fileName {
				return item, true
			}
		}
	}
	return atlas.Item{}, false
}

func (m *Manager) snapshotAtlas() *atlas.Atlas {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.atlas
}

// beginMutation reports whether a mutating operation may proceed: only
// in Running. Closing and Disposed both no-op mutating calls.
func (m *Manager) beginMutation() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Running
}

// canQuery reports whether a read-only query may proceed: Running and
// Closing both allow it (Closing may simply return empty results so
// disposal does not race an in-progress UI redraw); Disposed does not.
func (m *Manager) canQuery() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != Disposed
}
