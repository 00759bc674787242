// ABOUTME: Audio decoder package for the runtime's two decode paths
// ABOUTME: Provides Decoder interface and implementations for PCM and Opus
// Package decode provides audio decoders for the runtime buffer cache.
//
// Supports: PCM (16-bit and 24-bit) and Opus (the packets of the fast-path
// packet-stream container). The media-tool subprocess fallback for real
// container bytes (webm/mp4) is not in this package; it lives in
// pkg/sound's Decoder.
//
// All decoders implement the Decoder interface and output int32 samples
// in 24-bit range.
//
// Example:
//
//	decoder, err := decode.NewPCM(format)
//	samples, err := decoder.Decode(audioData)
package decode
