// ABOUTME: In-process Opus encoder backing the pipeline's primary .webm output
// ABOUTME: internal/pipeline chunks a source into FrameSize frames and frames the packets itself
package encode

import (
	"fmt"

	"github.com/jadujoel/scode/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// OpusEncoder wraps the Opus C encoder at a fixed sample rate and
// channel count. One frame (FrameSize interleaved samples) goes in per
// Encode call; the caller owns chunking and any padding of a final
// short frame.
type OpusEncoder struct {
	encoder   *opus.Encoder
	channels  int
	frameSize int // samples per channel per 20ms frame
}

// NewOpus creates an Opus encoder for format.SampleRate/format.Channels.
// format.Codec must be "opus". The encoder defaults to the Opus
// library's own bitrate heuristic; call SetBitrate to override it.
func NewOpus(format audio.Format) (Encoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("%w for opus encoder: %s", ErrUnsupportedCodec, format.Codec)
	}

	enc, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("create opus encoder: %w", err)
	}

	return &OpusEncoder{
		encoder:   enc,
		channels:  format.Channels,
		frameSize: format.SampleRate / 50, // 20ms frame
	}, nil
}

// SetBitrate configures the target bitrate in kbps.
func (e *OpusEncoder) SetBitrate(kbps int) error {
	return e.encoder.SetBitrate(kbps * 1000)
}

// FrameSize reports the number of interleaved samples (frameSamples *
// channels) Encode expects per call at this encoder's configured
// sample rate and channel count.
func (e *OpusEncoder) FrameSize() int {
	return e.frameSize * e.channels
}

// Encode packetizes one frame of interleaved int32 samples. len(samples)
// must equal FrameSize(); the pipeline zero-pads a source's final short
// frame before calling Encode so this invariant always holds.
func (e *OpusEncoder) Encode(samples []int32) ([]byte, error) {
	pcm := make([]int16, len(samples))
	for i, sample := range samples {
		pcm[i] = audio.SampleToInt16(sample)
	}

	data := make([]byte, 4000) // max Opus packet size
	n, err := e.encoder.Encode(pcm, data)
	if err != nil {
		return nil, fmt.Errorf("opus encode: %w", err)
	}
	return data[:n], nil
}

// Close is a no-op; the underlying opus.Encoder holds no resources
// that need releasing.
func (e *OpusEncoder) Close() error {
	return nil
}
