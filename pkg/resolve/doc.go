// ABOUTME: Source-name resolution package
// ABOUTME: Binds (source, package, language) triples to atlas file names
// Package resolve implements the deterministic, side-effect-free lookup
// that the runtime sound Manager uses to turn a logical source name into
// a concrete atlas Item.
package resolve
