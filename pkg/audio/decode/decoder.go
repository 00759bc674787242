// ABOUTME: Decoder interface shared by the fast-path and subprocess-fallback decoders
// ABOUTME: pkg/sound.Decoder picks an implementation per fetched container, not the caller
package decode

// Decoder converts one already-demuxed unit of encoded audio (a single
// Opus packet, or a run of raw PCM bytes) to interleaved int32 samples.
// pkg/sound.Decoder is the only caller that constructs these directly;
// it owns the choice of which implementation a given fetch needs.
type Decoder interface {
	Decode(data []byte) ([]int32, error)

	// Close releases decoder resources. Neither implementation in this
	// package currently holds any, but subprocess- or cgo-backed
	// decoders elsewhere in the pipeline do.
	Close() error
}
