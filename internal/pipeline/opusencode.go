// ABOUTME: In-process Opus encode for the primary .webm output, no ffmpeg subprocess
package pipeline

import (
	"fmt"

	"github.com/jadujoel/scode/pkg/audio"
	"github.com/jadujoel/scode/pkg/audio/encode"
	"github.com/jadujoel/scode/pkg/sound"
)

// encodeOpusContainer packetizes samples (interleaved at channels, 48kHz)
// into 20ms Opus frames at bitrateKbps and frames the resulting packets
// with the fast-path container the runtime decoder recognizes directly,
// so playback never has to shell out to a media tool for the primary
// output.
func encodeOpusContainer(samples []int32, channels, bitrateKbps int) ([]byte, error) {
	enc, err := encode.NewOpus(audio.Format{Codec: "opus", SampleRate: 48000, Channels: channels, BitDepth: 16})
	if err != nil {
		return nil, fmt.Errorf("opus container encode: %w", err)
	}
	defer enc.Close()

	opusEnc, ok := enc.(*encode.OpusEncoder)
	if !ok {
		return nil, fmt.Errorf("opus container encode: unexpected encoder implementation")
	}
	if err := opusEnc.SetBitrate(bitrateKbps); err != nil {
		return nil, fmt.Errorf("opus container encode: %w", err)
	}

	frameSize := opusEnc.FrameSize()
	var packets [][]byte
	for offset := 0; offset < len(samples); offset += frameSize {
		end := offset + frameSize
		var frame []int32
		if end <= len(samples) {
			frame = samples[offset:end]
		} else {
			frame = make([]int32, frameSize)
			copy(frame, samples[offset:])
		}

		packet, err := enc.Encode(frame)
		if err != nil {
			return nil, fmt.Errorf("opus container encode: %w", err)
		}
		packets = append(packets, packet)
	}

	return sound.WriteOpusPacketStream(48000, channels, packets), nil
}
