// ABOUTME: Runtime sound manager package
// ABOUTME: Buffer cache, event emission, and the Running/Closing/Disposed lifecycle
// Package sound is the runtime half of the pipeline: it loads an atlas,
// resolves logical sound names against the caller's selected package and
// language, and serves decoded playback buffers from a single-flighted
// cache that supports synchronous placeholder lookups. Destination
// routing — actually playing a buffer through a live audio device — is
// the caller's responsibility; this package never opens an output
// device.
package sound
