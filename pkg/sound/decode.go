// ABOUTME: Decodes fetched encoded bytes into PCM samples
// ABOUTME: Fast path over the raw Opus packet stream, subprocess fallback otherwise
package sound

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/jadujoel/scode/pkg/audio"
	"github.com/jadujoel/scode/pkg/audio/decode"
)

// Decoder turns fetched container bytes into PCM samples at a known
// channel count and sample rate. It recognizes the internal raw Opus
// packet-stream framing directly; any other byte layout (a real
// ffmpeg-muxed .webm or .mp4) is handed to a configurable external
// media tool, mirroring the encoder's own subprocess boundary so both
// directions of the pipeline cross the same "external collaborator"
// seam.
type Decoder struct {
	// MediaTool is the path to an ffmpeg-compatible binary used for the
	// subprocess fallback. Defaults to "ffmpeg" if empty.
	MediaTool string
}

// NewDecoder returns a Decoder using mediaTool for the subprocess
// fallback path. An empty mediaTool defaults to "ffmpeg" on first use.
func NewDecoder(mediaTool string) *Decoder {
	return &Decoder{MediaTool: mediaTool}
}

// Decode returns PCM samples at channels/sampleRate for data.
func (d *Decoder) Decode(ctx context.Context, data []byte, channels, sampleRate int) ([]int32, error) {
	if sr, ch, packets, ok := parseOpusPacketStream(data); ok {
		return decodeOpusPackets(packets, ch, sr)
	}
	return d.decodeViaMediaTool(ctx, data, channels, sampleRate)
}

func decodeOpusPackets(packets [][]byte, channels, sampleRate int) ([]int32, error) {
	dec, err := decode.NewOpus(audio.Format{Codec: "opus", SampleRate: sampleRate, Channels: channels, BitDepth: 16})
	if err != nil {
		return nil, fmt.Errorf("opus fast path: %w", err)
	}
	defer dec.Close()

	var out []int32
	for _, p := range packets {
		samples, err := dec.Decode(p)
		if err != nil {
			return nil, fmt.Errorf("opus fast path: %w", err)
		}
		out = append(out, samples...)
	}
	return out, nil
}

func (d *Decoder) mediaTool() string {
	if d.MediaTool == "" {
		return "ffmpeg"
	}
	return d.MediaTool
}

// decodeViaMediaTool writes data to a temp file and shells out to the
// configured media tool to demux/transcode it to raw 16-bit little-
// endian PCM on stdout, which is then parsed with the PCM decoder.
func (d *Decoder) decodeViaMediaTool(ctx context.Context, data []byte, channels, sampleRate int) ([]int32, error) {
	tmp, err := os.CreateTemp("", "scode-decode-*.bin")
	if err != nil {
		return nil, fmt.Errorf("media tool decode: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(data); err != nil {
		return nil, fmt.Errorf("media tool decode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("media tool decode: %w", err)
	}

	cmd := exec.CommandContext(ctx, d.mediaTool(),
		"-v", "error",
		"-i", tmp.Name(),
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-",
	)

	pcm, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("media tool decode: %w", err)
	}

	dec, err := decode.NewPCM(audio.Format{Codec: "pcm", SampleRate: sampleRate, Channels: channels, BitDepth: 16})
	if err != nil {
		return nil, fmt.Errorf("media tool decode: %w", err)
	}
	defer dec.Close()

	return dec.Decode(pcm)
}
