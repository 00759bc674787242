// ABOUTME: Atlas and AtlasItem types
// ABOUTME: In-memory package->items map plus the no-language sentinel
package atlas

import "github.com/jadujoel/scode/pkg/address"

// NoLanguage is the sentinel language tag meaning "applies to all
// languages". An item carrying this tag matches any requested language.
const NoLanguage = "_"

// Item is one (source name, file name, sample count, language tag) tuple,
// plus a Channels field derived from the file name's "<n>ch." field at
// construction time. Channels is not part of the wire tuple; it exists
// so placeholder-shape computation can read channel count directly off
// the item rather than re-parsing FileName at every call site (see
// spec's open question about file-name format fragility).
type Item struct {
	SourceName  string
	FileName    string
	SampleCount int
	LanguageTag string
	Channels    int
}

// Atlas maps package name to its ordered item list. Insertion order of
// packages and of items within a package is preserved, because the
// resolver's fallback rules are order-sensitive.
type Atlas struct {
	order    []string
	packages map[string][]Item
}

// New returns an empty Atlas.
func New() *Atlas {
	return &Atlas{packages: make(map[string][]Item)}
}

// Packages returns package names in insertion order.
func (a *Atlas) Packages() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Items returns the item list for a package, or nil if the package is
// unknown. The returned slice must not be mutated by the caller.
func (a *Atlas) Items(pkg string) []Item {
	return a.packages[pkg]
}

// HasPackage reports whether pkg is present in the atlas, even if empty.
func (a *Atlas) HasPackage(pkg string) bool {
	_, ok := a.packages[pkg]
	return ok
}

// Add appends item to pkg, creating the package if necessary. Package
// insertion order is recorded on first use.
func (a *Atlas) Add(pkg string, item Item) {
	if item.Channels == 0 {
		if ch, ok := address.Channels(item.FileName); ok {
			item.Channels = ch
		}
	}
	if _, ok := a.packages[pkg]; !ok {
		a.order = append(a.order, pkg)
	}
	a.packages[pkg] = append(a.packages[pkg], item)
}

// EnsurePackage registers pkg with an empty item list if it does not
// already exist, preserving insertion order.
func (a *Atlas) EnsurePackage(pkg string) {
	if _, ok := a.packages[pkg]; !ok {
		a.order = append(a.order, pkg)
		a.packages[pkg] = nil
	}
}

// Languages returns the unique language tags present in pkg, in the
// order they first appear. The no-language sentinel is included if any
// item in pkg carries it.
func (a *Atlas) Languages(pkg string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range a.packages[pkg] {
		if !seen[item.LanguageTag] {
			seen[item.LanguageTag] = true
			out = append(out, item.LanguageTag)
		}
	}
	return out
}

// SourceNames returns the source names of items in pkg whose language
// tag is one of languages, in the order they first appear. Duplicates
// within a single language set collapse to one entry.
func (a *Atlas) SourceNames(pkg string, languages []string) []string {
	want := make(map[string]bool, len(languages))
	for _, l := range languages {
		want[l] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, item := range a.packages[pkg] {
		if !want[item.LanguageTag] {
			continue
		}
		if seen[item.SourceName] {
			continue
		}
		seen[item.SourceName] = true
		out = append(out, item.SourceName)
	}
	return out
}

// Clone returns a deep copy of a, safe for independent mutation.
func (a *Atlas) Clone() *Atlas {
	out := New()
	out.order = append([]string(nil), a.order...)
	for pkg, items := range a.packages {
		out.packages[pkg] = append([]Item(nil), items...)
	}
	return out
}
