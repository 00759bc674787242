// ABOUTME: In-process Opus encode path for the pipeline's primary .webm output
// ABOUTME: The pipeline's only other output, AAC-in-MP4, has no in-process encoder and goes through ffmpeg instead
// Package encode provides the pipeline's in-process Opus encoder. It exists
// so the pipeline's primary output (Opus-in-webm) never depends on an
// external media tool being installed; only the secondary, optional MP4
// output still shells out, because no AAC encoder exists in this module's
// dependency graph.
//
// Example:
//
//	encoder, err := encode.NewOpus(format)
//	encoder.(*encode.OpusEncoder).SetBitrate(64)
//	packet, err := encoder.Encode(frame)
package encode
