// ABOUTME: Audio fundamentals package shared by the encoder and the runtime buffer cache
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the PCM buffer shape and sample conversions shared
// by the encode pipeline (pkg/audio/encode) and the runtime decode paths
// (pkg/audio/decode, pkg/sound).
//
//   - Format: describes the container a Buffer's bytes were produced from
//     (codec, sample rate, channels, bit depth).
//   - Buffer: interleaved PCM samples plus the atlas-authoritative shape a
//     placeholder is allocated at and a decode fills in place.
//
// Sample values travel internally as int32 left-justified in 24-bit range,
// regardless of whether the wire format is 16-bit PCM, 24-bit PCM, or Opus
// (which is always 16-bit internally):
//
//	sample24 := audio.SampleFromInt16(sample16)
package audio
