// ABOUTME: Atlas error sentinels
// ABOUTME: errors.Is-comparable taxonomy entries for atlas load failures
package atlas

import "errors"

var (
	// ErrFetch is returned when the atlas document could not be retrieved.
	ErrFetch = errors.New("atlas: fetch failed")

	// ErrMalformed is returned when the atlas document's JSON shape does
	// not match the expected [source, file, count, lang] tuple layout.
	ErrMalformed = errors.New("atlas: malformed document")
)
