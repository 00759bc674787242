// ABOUTME: Tests for the resolver's fallback rules
package resolve

import (
	"testing"

	"github.com/jadujoel/scode/pkg/atlas"
)

func TestResolveUnlocalizedPrecedesLocalizedWhenListedFirst(t *testing.T) {
	a := atlas.New()
	a.Add("a", atlas.Item{SourceName: "hi", FileName: "F2", SampleCount: 48000, LanguageTag: atlas.NoLanguage})
	a.Add("a", atlas.Item{SourceName: "hi", FileName: "F1", SampleCount: 48000, LanguageTag: "en"})

	item, ok := Resolve(a, "hi", "a", "en")
	if !ok || item.FileName != "F2" {
		t.Fatalf("expected F2 (unlocalized, listed first), got %+v ok=%v", item, ok)
	}
}

func TestResolveLocalizedWinsWhenListedFirst(t *testing.T) {
	a := atlas.New()
	a.Add("a", atlas.Item{SourceName: "hi", FileName: "F1", SampleCount: 48000, LanguageTag: "en"})
	a.Add("a", atlas.Item{SourceName: "hi", FileName: "F2", SampleCount: 48000, LanguageTag: atlas.NoLanguage})

	item, ok := Resolve(a, "hi", "a", "en")
	if !ok || item.FileName != "F1" {
		t.Fatalf("expected F1, got %+v ok=%v", item, ok)
	}
}

func TestResolveCrossPackageFallback(t *testing.T) {
	a := atlas.New()
	a.EnsurePackage("a")
	a.Add("common", atlas.Item{SourceName: "bell", FileName: "B", SampleCount: 1000, LanguageTag: atlas.NoLanguage})

	item, ok := Resolve(a, "bell", "a", "en")
	if !ok || item.FileName != "B" {
		t.Fatalf("expected cross-package fallback to B, got %+v ok=%v", item, ok)
	}
}

func TestResolveFallbackIndependentOfLanguage(t *testing.T) {
	a := atlas.New()
	a.EnsurePackage("a")
	a.Add("common", atlas.Item{SourceName: "bell", FileName: "B", SampleCount: 1000, LanguageTag: atlas.NoLanguage})

	for _, lang := range []string{"en", "es", "zz"} {
		item, ok := Resolve(a, "bell", "a", lang)
		if !ok || item.FileName != "B" {
			t.Fatalf("language %q: expected B, got %+v ok=%v", lang, item, ok)
		}
	}
}

func TestResolveNotFound(t *testing.T) {
	a := atlas.New()
	a.Add("a", atlas.Item{SourceName: "hi", FileName: "F1", SampleCount: 1, LanguageTag: atlas.NoLanguage})

	_, ok := Resolve(a, "missing", "a", "en")
	if ok {
		t.Fatal("expected no match")
	}
}

func TestResolveUnknownPackageStillSearchesOthers(t *testing.T) {
	a := atlas.New()
	a.Add("common", atlas.Item{SourceName: "bell", FileName: "B", SampleCount: 1, LanguageTag: atlas.NoLanguage})

	item, ok := Resolve(a, "bell", "does-not-exist", "en")
	if !ok || item.FileName != "B" {
		t.Fatalf("expected B, got %+v ok=%v", item, ok)
	}
}

func TestResolveDoesNotMutateAtlas(t *testing.T) {
	a := atlas.New()
	a.Add("a", atlas.Item{SourceName: "hi", FileName: "F1", SampleCount: 1, LanguageTag: atlas.NoLanguage})

	before := len(a.Items("a"))
	Resolve(a, "hi", "a", "en")
	Resolve(a, "missing", "a", "en")

	if after := len(a.Items("a")); after != before {
		t.Fatalf("resolve mutated atlas: before=%d after=%d", before, after)
	}
}
