// ABOUTME: Opus packet decoder for the runtime's fast path
// ABOUTME: Unpacks a single already-demuxed packet at a time, never a container
package decode

import (
	"fmt"

	"github.com/jadujoel/scode/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// OpusDecoder unpacks Opus packets produced either by the pipeline's
// in-process encoder (pkg/audio/encode.OpusEncoder, framed by
// pkg/sound.WriteOpusPacketStream) or demuxed elsewhere. It has no
// notion of a container: callers split the byte stream into packets
// before calling Decode.
type OpusDecoder struct {
	decoder  *opus.Decoder
	channels int
}

// NewOpus returns a Decoder for format.SampleRate/format.Channels.
// format.Codec must be "opus".
func NewOpus(format audio.Format) (Decoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("%w for opus decoder: %s", ErrUnsupportedCodec, format.Codec)
	}

	dec, err := opus.NewDecoder(format.SampleRate, format.Channels)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}

	return &OpusDecoder{decoder: dec, channels: format.Channels}, nil
}

// Decode unpacks a single Opus packet into interleaved int32 samples.
func (d *OpusDecoder) Decode(data []byte) ([]int32, error) {
	// Opus frames never exceed 120ms; 5760 samples/channel covers the
	// largest frame at any sample rate this decoder is constructed for.
	pcm16 := make([]int16, 5760*d.channels)

	n, err := d.decoder.Decode(data, pcm16)
	if err != nil {
		return nil, fmt.Errorf("opus decode: %w", err)
	}

	samples := n * d.channels
	out := make([]int32, samples)
	for i := 0; i < samples; i++ {
		out[i] = audio.SampleFromInt16(pcm16[i])
	}
	return out, nil
}

// Close is a no-op; the underlying opus.Decoder holds no resources
// that need releasing.
func (d *OpusDecoder) Close() error {
	return nil
}
