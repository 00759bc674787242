// ABOUTME: Atlas JSON wire format
// ABOUTME: Encodes/decodes the {package: [[src, file, count, lang], ...]} document
package atlas

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the atlas as {package: [[source, file, count, lang], ...]}.
// Key ordering is whatever encoding/json's map iteration produces; per the
// wire-format contract, stable key ordering is not required.
func (a *Atlas) MarshalJSON() ([]byte, error) {
	doc := make(map[string][][4]any, len(a.packages))
	for pkg, items := range a.packages {
		tuples := make([][4]any, len(items))
		for i, it := range items {
			tuples[i] = [4]any{it.SourceName, it.FileName, it.SampleCount, it.LanguageTag}
		}
		doc[pkg] = tuples
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the atlas wire format. A package whose value is
// not an array of 4-element [string, string, number, string] tuples
// fails the whole load with ErrMalformed; unknown top-level fields never
// occur because the document has no fields besides package keys.
func (a *Atlas) UnmarshalJSON(data []byte) error {
	var raw map[string][][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := New()
	for pkg, tuples := range raw {
		out.EnsurePackage(pkg)
		for _, tuple := range tuples {
			item, err := decodeTuple(tuple)
			if err != nil {
				return fmt.Errorf("%w: package %q: %v", ErrMalformed, pkg, err)
			}
			out.Add(pkg, item)
		}
	}
	*a = *out
	return nil
}

func decodeTuple(tuple []json.RawMessage) (Item, error) {
	if len(tuple) != 4 {
		return Item{}, fmt.Errorf("expected 4-element tuple, got %d", len(tuple))
	}

	var sourceName, fileName, languageTag string
	var sampleCount int

	if err := json.Unmarshal(tuple[0], &sourceName); err != nil {
		return Item{}, fmt.Errorf("source_name: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &fileName); err != nil {
		return Item{}, fmt.Errorf("file_name: %w", err)
	}
	if err := json.Unmarshal(tuple[2], &sampleCount); err != nil {
		return Item{}, fmt.Errorf("sample_count: %w", err)
	}
	if err := json.Unmarshal(tuple[3], &languageTag); err != nil {
		return Item{}, fmt.Errorf("language_tag: %w", err)
	}

	return Item{
		SourceName:  sourceName,
		FileName:    fileName,
		SampleCount: sampleCount,
		LanguageTag: languageTag,
	}, nil
}
