// ABOUTME: The resolver algorithm
// ABOUTME: First-match-wins search within a package, then across packages
package resolve

import "github.com/jadujoel/scode/pkg/atlas"

// Resolve finds the atlas.Item for sourceName scoped by pkg and
// language. It first searches pkg in stored order for an item whose
// source name matches and whose language tag is either the no-language
// sentinel or the requested language — the sentinel disjunct is checked
// first so an unlocalized item occurring before a localized one of the
// same name wins. If pkg has no match (or does not exist), it falls
// back to every other package in the atlas's insertion order, applying
// the same rule. The second return value is false if nothing matches.
//
// Resolve never mutates atlas.
func Resolve(a *atlas.Atlas, sourceName, pkg, language string) (atlas.Item, bool) {
	if a.HasPackage(pkg) {
		if item, ok := findInPackage(a.Items(pkg), sourceName, language); ok {
			return item, true
		}
	}

	for _, other := range a.Packages() {
		if item, ok := findInPackage(a.Items(other), sourceName, language); ok {
			return item, true
		}
	}

	return atlas.Item{}, false
}

func findInPackage(items []atlas.Item, sourceName, language string) (atlas.Item, bool) {
	for _, item := range items {
		if item.SourceName != sourceName {
			continue
		}
		if item.LanguageTag == atlas.NoLanguage || item.LanguageTag == language {
			return item, true
		}
	}
	return atlas.Item{}, false
}
